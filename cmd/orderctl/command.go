package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Command represents a CLI command with common functionality
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(args []string) error
}

// NewFlagSet creates a standardized flag set for a command
func (c *Command) NewFlagSet(w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() {
		c.PrintUsage(w)
		fmt.Fprintln(w, "\nFLAGS:")
		fs.PrintDefaults()
	}
	return fs
}

// PrintUsage prints standardized usage information
func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

// CommandRegistry manages all CLI commands
type CommandRegistry struct {
	commands map[string]*Command
	order    []string
	version  VersionInfo
}

// VersionInfo holds build-time version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(v VersionInfo) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
		version:  v,
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *Command) {
	if _, ok := r.commands[cmd.Name]; !ok {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Execute runs the appropriate command based on args
func (r *CommandRegistry) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		r.PrintHelp(stderr)
		return fmt.Errorf("no command specified")
	}

	cmdName := args[0]
	switch cmdName {
	case "help", "-h", "--help":
		if len(args) > 1 {
			if cmd, ok := r.commands[args[1]]; ok {
				cmd.PrintUsage(stdout)
				return nil
			}
		}
		r.PrintHelp(stdout)
		return nil
	}

	cmd, ok := r.commands[cmdName]
	if !ok {
		r.PrintHelp(stderr)
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	return cmd.Run(args[1:])
}

// PrintHelp prints overall CLI help
func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "orderctl - manage storefront orders from the terminal")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    orderctl <command> [flags] [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range r.order {
		cmd := r.commands[name]
		fmt.Fprintf(w, "    %-10s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'orderctl help <command>' for more information on a command.")
}

// TableWriter provides simple table formatting
type TableWriter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableWriter creates a new table writer
func NewTableWriter(headers []string) *TableWriter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &TableWriter{headers: headers, widths: widths}
}

// AddRow adds a row to the table
func (t *TableWriter) AddRow(row []string) {
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if n := utf8.RuneCountInString(cell); i < len(t.widths) && n > t.widths[i] {
			t.widths[i] = n
		}
	}
}

// Print prints the table with borders
func (t *TableWriter) Print(w io.Writer) {
	t.printSeparator(w, "┌", "┬", "┐")
	t.printRow(w, t.headers)
	t.printSeparator(w, "├", "┼", "┤")
	for _, row := range t.rows {
		t.printRow(w, row)
	}
	t.printSeparator(w, "└", "┴", "┘")
}

func (t *TableWriter) printSeparator(w io.Writer, left, mid, right string) {
	fmt.Fprint(w, left)
	for i, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(t.widths)-1 {
			fmt.Fprint(w, mid)
		}
	}
	fmt.Fprintln(w, right)
}

func (t *TableWriter) printRow(w io.Writer, row []string) {
	fmt.Fprint(w, "│")
	for i, cell := range row {
		if i < len(t.widths) {
			pad := t.widths[i] - utf8.RuneCountInString(cell)
			fmt.Fprintf(w, " %s%s │", cell, strings.Repeat(" ", pad))
		}
	}
	fmt.Fprintln(w)
}
