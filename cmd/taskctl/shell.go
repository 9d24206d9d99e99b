package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const shellHelp = `Commands:
  add <title>   add a task
  rm <id|#n>    delete a task by id or by list position
  ls            show the current list
  reload        fetch the list from the server
  help          show this help
  quit          leave the shell
`

// runShell reads commands from in until quit or EOF. The list is loaded once
// at start; afterwards only add and rm change it, unless the user reloads.
func runShell(ctx context.Context, in io.Reader, s *session) error {
	s.ctrl.Load(ctx)
	if err := s.render(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if _, err := fmt.Fprint(s.out, "> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(s.out)
			return scanner.Err()
		}

		verb, rest := splitCommand(scanner.Text())
		switch verb {
		case "":
			continue
		case "add":
			s.ctrl.Add(ctx, rest)
		case "rm", "delete":
			id, ok := resolveID(s, rest)
			if !ok {
				_, _ = fmt.Fprintf(s.out, "no task %q\n", rest)
				continue
			}
			s.ctrl.Delete(ctx, id)
		case "ls", "list":
		case "reload":
			s.ctrl.Load(ctx)
		case "help", "?":
			_, _ = fmt.Fprint(s.out, shellHelp)
			continue
		case "quit", "exit", "q":
			return nil
		default:
			_, _ = fmt.Fprintf(s.out, "unknown command %q (try help)\n", verb)
			continue
		}

		if err := s.render(); err != nil {
			return err
		}
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(rest)
}

// resolveID accepts a task id or "#n", the 1-based position shown by Render.
func resolveID(s *session, arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	if n, ok := strings.CutPrefix(arg, "#"); ok {
		i, err := strconv.Atoi(n)
		tasks := s.ctrl.State().Tasks
		if err != nil || i < 1 || i > len(tasks) {
			return "", false
		}
		return tasks[i-1].ID, true
	}
	return arg, true
}
