package gui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	uerror "t0ast.cc/floorpier/util/error"
)

// Prompt shows items in a rofi menu and returns the chosen one, or
// nil if the menu was dismissed.
func Prompt(ctx context.Context, items []string, prompt string, matchExact bool) (*string, error) {
	rofiArgs := []string{"-dmenu", "-p", prompt}
	if matchExact {
		rofiArgs = append(rofiArgs, "-no-custom")
	}

	input := strings.Join(items, "\n")

	rofiCmd := exec.CommandContext(ctx, "rofi", rofiArgs...)
	rofiCmd.Stdin = strings.NewReader(input)
	out, err := rofiCmd.Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil, nil
		}
		return nil, uerror.WithStackTrace(err)
	}

	outStr := strings.TrimSuffix(string(out), "\n")
	return &outStr, nil
}

// ConsoleConfirmer asks on a terminal. Only a "y" in any case counts
// as yes; everything else, including end of input, is a no.
type ConsoleConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsoleConfirmer(in io.Reader, out io.Writer) *ConsoleConfirmer {
	return &ConsoleConfirmer{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (c *ConsoleConfirmer) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprint(c.out, question); err != nil {
		return false, uerror.WithStackTrace(err)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, uerror.WithStackTrace(err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(c.out)
	}
	return isYes(line), nil
}

// RofiConfirmer asks through a rofi menu offering "y" and "n".
type RofiConfirmer struct {
	Context context.Context
}

func (c RofiConfirmer) Confirm(question string) (bool, error) {
	answer, err := Prompt(c.Context, []string{"y", "n"}, strings.TrimSuffix(question, " (y/n): "), true)
	if err != nil {
		return false, err
	}
	return answer != nil && isYes(*answer), nil
}

func isYes(answer string) bool {
	return strings.ToLower(strings.TrimRight(answer, "\r\n")) == "y"
}
