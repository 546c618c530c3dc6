package view

import (
	"fmt"
	"strconv"
	"strings"

	"kiosk-quiz/internal/domain"
)

// CommandKind identifies what a line typed on the console asks for
type CommandKind int

const (
	CommandPress CommandKind = iota
	CommandSelectSet
	CommandFullscreen
	CommandQuit
)

// Command is one parsed console input line
type Command struct {
	Kind   CommandKind
	Choice string
	SetID  int
}

// ParseInput turns a console line into a command.
// "l"/"left" and "r"/"right" press a control, a number selects a question set,
// "f" enters fullscreen and "q" quits.
func ParseInput(line string) (Command, error) {
	input := strings.ToLower(strings.TrimSpace(line))
	switch input {
	case "":
		return Command{}, domain.NewInvalidInputError("empty input")
	case "l", "left":
		return Command{Kind: CommandPress, Choice: string(domain.ChoiceLeft)}, nil
	case "r", "right":
		return Command{Kind: CommandPress, Choice: string(domain.ChoiceRight)}, nil
	case "f", "fullscreen":
		return Command{Kind: CommandFullscreen}, nil
	case "q", "quit", "exit":
		return Command{Kind: CommandQuit}, nil
	}

	setID, err := strconv.Atoi(input)
	if err != nil || setID <= 0 {
		return Command{}, domain.NewInvalidInputError(fmt.Sprintf("unknown input: %q", line))
	}
	return Command{Kind: CommandSelectSet, SetID: setID}, nil
}
