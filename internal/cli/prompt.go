package cli

import (
	"bufio"
	"fmt"
	"strings"
)

func (c confirmer) Confirm(prompt string) bool {
	if c.yes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
