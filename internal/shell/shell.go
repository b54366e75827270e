// Package shell is a line-oriented terminal front end for the directory.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/directory"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/form"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

const helpText = `commands:
  list              show the visible users
  search <term>     search by name prefix
  clear             clear the search
  reload            fetch all users again
  add               create a user
  edit <id>         edit a user
  delete <id>       delete a user (asks for confirmation)
  help              show this help
  quit              leave the shell`

// Shell reads commands from in and writes tables and messages to out.
type Shell struct {
	dir    *directory.Directory
	in     *bufio.Scanner
	out    io.Writer
	Prompt string
}

func New(dir *directory.Directory, in io.Reader, out io.Writer) *Shell {
	return &Shell{dir: dir, in: bufio.NewScanner(in), out: out, Prompt: "userdir> "}
}

// Run processes commands until quit or end of input.  Command failures are
// printed and the loop continues; only read errors are returned.
func (s *Shell) Run(ctx context.Context) error {
	s.render()
	for {
		line, ok := s.ask(s.Prompt)
		if !ok {
			return s.in.Err()
		}
		cmd, arg, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")
		switch cmd {
		case "":
		case "quit", "exit":
			return nil
		case "help":
			s.println(helpText)
		case "list", "ls":
			s.render()
		case "search":
			if err := s.dir.Search(ctx, arg); err != nil {
				s.printf("search: %v\n", err)
			}
			s.render()
		case "clear":
			s.dir.SetTerm("")
			s.render()
		case "reload":
			_ = s.dir.Load(ctx)
			s.render()
		case "add":
			s.add(ctx)
		case "edit":
			s.edit(ctx, strings.TrimSpace(arg))
		case "delete", "rm":
			s.delete(ctx, strings.TrimSpace(arg))
		default:
			s.printf("unknown command %q, try help\n", cmd)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Shell) add(ctx context.Context) {
	f, err := s.dir.BeginCreate()
	if err != nil {
		s.printf("add: %v\n", err)
		return
	}
	s.fill(ctx, f)
}

func (s *Shell) edit(ctx context.Context, id string) {
	if id == "" {
		s.println("usage: edit <id>")
		return
	}
	f, err := s.dir.BeginEdit(ctx, id)
	if err != nil {
		s.printf("edit: %v\n", err)
		return
	}
	if msg := f.Message(); msg != "" {
		s.println(msg)
	}
	s.fill(ctx, f)
}

// fill prompts for every field, offering the draft as the default, and
// submits.  After a failure the user may retry with the kept draft.
func (s *Shell) fill(ctx context.Context, f *form.Form) {
	for {
		draft := f.Draft()
		for _, field := range []string{store.FieldName, store.FieldEmail, store.FieldPhone, store.FieldAddress} {
			cur, _ := draft.Value(field)
			prompt := field + ": "
			if cur != "" {
				prompt = fmt.Sprintf("%s [%s]: ", field, cur)
			}
			v, ok := s.ask(prompt)
			if !ok {
				s.dir.CloseForm()
				return
			}
			if v != "" {
				_ = draft.Set(field, v)
			}
		}
		f.SetDraft(draft)

		err := f.Submit(ctx)
		if err == nil {
			s.render()
			return
		}
		s.println(f.Message())
		var ve *form.ValidationError
		if !errors.As(err, &ve) && !store.IsStoreError(err) {
			s.printf("%v\n", err)
		}
		if !s.confirm("try again?") {
			s.dir.CloseForm()
			return
		}
	}
}

func (s *Shell) delete(ctx context.Context, id string) {
	if id == "" {
		s.println("usage: delete <id>")
		return
	}
	label := id
	for _, u := range s.dir.Users() {
		if u.ID == id {
			label = u.String()
		}
	}
	if err := s.dir.RequestDelete(id); err != nil {
		s.printf("delete: %v\n", err)
		return
	}
	if !s.confirm("delete " + label + "?") {
		_ = s.dir.CancelDelete()
		return
	}
	if err := s.dir.ConfirmDelete(ctx); err != nil {
		s.showNotice()
		return
	}
	s.render()
}

func (s *Shell) render() {
	s.showNotice()
	users := s.dir.Visible()
	if term := s.dir.Term(); !store.IsBlank(term) {
		s.printf("search %q (%s): %d match(es)\n", term, s.dir.Mode(), len(users))
	}
	_ = PrintUsers(s.out, users)
}

func (s *Shell) showNotice() {
	if n := s.dir.Notice(); n != "" {
		s.printf("! %s\n", n)
		s.dir.ClearNotice()
	}
}

func (s *Shell) confirm(question string) bool {
	answer, ok := s.ask(question + " [y/N] ")
	if !ok {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// ask prints prompt and reads one line; false at end of input.
func (s *Shell) ask(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return s.in.Text(), true
}

func (s *Shell) println(msg string) { fmt.Fprintln(s.out, msg) }

func (s *Shell) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }
