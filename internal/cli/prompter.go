package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fjacquet/finsort/internal/currencyutils"
	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
	"fjacquet/finsort/internal/queue"
)

// ErrQuit is returned by Run when the user leaves before the ledger is done.
var ErrQuit = errors.New("classification stopped by user")

// Workflow is the controller surface the prompter drives. queue.Controller
// implements it.
type Workflow interface {
	State() queue.State
	Current() (models.QueueItem, bool)
	Options() []string
	Selection() (string, bool)
	Remaining() int
	Advance(ctx context.Context) error
	SelectLabel(label string) error
	CreateLabel(ctx context.Context, name string, dir models.Direction) error
	Commit(ctx context.Context) error
	Reclassify(ctx context.Context) error
}

// Prompter is an interactive terminal front end for a Workflow. It only
// renders controller state and forwards commands; it holds no workflow state
// of its own.
type Prompter struct {
	reader *LineReader
	writer io.Writer
	logger logging.Logger
}

// NewPrompter creates a prompter on r and w. Nil values use stdin and stdout.
func NewPrompter(r io.Reader, w io.Writer, logger logging.Logger) *Prompter {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(r),
		writer: w,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentCLI),
	}
}

// Run prompts until wf reaches Done. Commands: a number picks that option,
// +name creates and picks a label, r retries the last failed step, q quits.
func (p *Prompter) Run(ctx context.Context, wf Workflow) error {
	for {
		state := wf.State()
		switch state {
		case queue.Done:
			p.println(FormatSuccess("Ledger fully classified"))
			return nil
		case queue.Idle:
			return fmt.Errorf("workflow not started")
		case queue.OptionsUnavailable:
			p.println(FormatWarning("Classifications could not be loaded."))
		case queue.Reclassifying:
			p.println(FormatWarning("Reclassifying the ledger failed."))
		default:
			p.renderItem(wf)
		}

		line, err := p.prompt(ctx, promptFor(state))
		if err != nil {
			return err
		}

		quit, err := p.dispatch(ctx, wf, line)
		if quit {
			return ErrQuit
		}
		if err != nil {
			p.logger.WithError(err).Debug("Command failed", logging.F(logging.FieldState, wf.State().String()))
			p.println(FormatError(flowerror.UserMessage(err)))
		}
	}
}

func promptFor(state queue.State) string {
	switch state {
	case queue.OptionsUnavailable, queue.Reclassifying:
		return "[r] retry  [q] quit"
	case queue.ReadyToCommit:
		return "[r] save again  [n] pick  [+name] new  [q] quit"
	default:
		return "[n] pick  [+name] new  [r] reload  [q] quit"
	}
}

// dispatch maps one input line onto controller operations.
func (p *Prompter) dispatch(ctx context.Context, wf Workflow, line string) (bool, error) {
	switch {
	case line == "":
		return false, nil
	case strings.EqualFold(line, "q"):
		return true, nil
	case strings.EqualFold(line, "r"):
		return false, retry(ctx, wf)
	case strings.HasPrefix(line, "+"):
		item, ok := wf.Current()
		if !ok {
			return false, fmt.Errorf("nothing to classify")
		}
		if err := wf.CreateLabel(ctx, line[1:], item.Direction); err != nil {
			return false, err
		}
		return false, wf.Commit(ctx)
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return false, fmt.Errorf("unknown command %q", line)
	}
	options := wf.Options()
	if n < 1 || n > len(options) {
		return false, fmt.Errorf("choose a number between 1 and %d", len(options))
	}
	if err := wf.SelectLabel(options[n-1]); err != nil {
		return false, err
	}
	return false, wf.Commit(ctx)
}

func retry(ctx context.Context, wf Workflow) error {
	switch wf.State() {
	case queue.Reclassifying:
		return wf.Reclassify(ctx)
	case queue.ReadyToCommit:
		return wf.Commit(ctx)
	default:
		return wf.Advance(ctx)
	}
}

func (p *Prompter) renderItem(wf Workflow) {
	item, ok := wf.Current()
	if !ok {
		return
	}

	amountStyle := IncomeStyle
	if item.Direction == models.Expense {
		amountStyle = ExpenseStyle
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Activity: %s\n", item.Activity)
	fmt.Fprintf(&b, "Type:     %s\n", item.Direction.Title())
	fmt.Fprintf(&b, "Amount:   %s\n", amountStyle.Render(currencyutils.FormatAmount(item.Amount)))
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d left to classify", wf.Remaining())))

	p.println(RenderBox("Unclassified transaction", b.String()))

	options := wf.Options()
	if len(options) == 0 {
		p.println(SubtleStyle.Render("  No " + item.Direction.String() + " classifications yet, create one with +name"))
	}
	selected, _ := wf.Selection()
	for i, option := range options {
		line := fmt.Sprintf("  [%d] %s", i+1, option)
		if option == selected {
			line = PromptStyle.Render(line + " *")
		}
		p.println(line)
	}
}

func (p *Prompter) prompt(ctx context.Context, text string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(text)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return "", ErrQuit
	}
	return line, err
}

func (p *Prompter) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		p.logger.WithError(err).Debug("Failed to write output")
	}
}
