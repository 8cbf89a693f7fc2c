package models

import "strings"

const redacted = "****"

// Command describes a single subprocess invocation.
type Command struct {
	Name    string
	Args    []string
	Env     []string // appended to the parent environment
	Stdout  string   // file receiving the process stdout, empty for none
	Secrets []string // values masked by String
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command for logging with secrets masked.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+3)
	for _, arg := range c.Argv() {
		parts = append(parts, c.redact(arg))
	}
	if c.Stdout != "" {
		parts = append(parts, ">", c.Stdout)
	}
	return strings.Join(parts, " ")
}

func (c Command) redact(arg string) string {
	for _, secret := range c.Secrets {
		if secret != "" {
			arg = strings.ReplaceAll(arg, secret, redacted)
		}
	}
	return arg
}
