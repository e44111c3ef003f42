package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skeletonize/pkg/bitmap"
	"github.com/matzehuels/skeletonize/pkg/codec"
	"github.com/matzehuels/skeletonize/pkg/errors"
	"github.com/matzehuels/skeletonize/pkg/pipeline"
	"github.com/matzehuels/skeletonize/pkg/thinning"
)

const (
	glyphForeground = "█"
	glyphBackground = "·"

	// panStep is how far one arrow key moves the viewport.
	panStep = 4
)

var (
	inspectPixelStyle = lipgloss.NewStyle().Foreground(colorWhite)
	inspectEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	inspectDoneStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// inspectCommand creates the inspect command, an interactive round-by-round
// view of the thinning process.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		input  string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "inspect --input FILE",
		Short: "Step through the thinning rounds of an image in the terminal",
		Long: `Open an image and watch it thin one round at a time.

Keys:
  n, space   run one round
  r          run until nothing changes
  ←↑↓→ hjkl  pan
  q          quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				cmd.PrintErrln(cmd.UsageString())
				return &errors.UsageError{Flag: "input", Message: "--input is required", ExitCode: pipeline.ExitMissingInput}
			}
			strict = flagOr(cmd, "strict", strict, c.Config.Run.Strict)
			b, err := codec.Decode(input, codec.Options{Strict: strict})
			if err != nil {
				return err
			}

			m := newInspectModel(filepath.Base(input), b)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}

			if fm, ok := final.(inspectModel); ok {
				loggerFromContext(cmd.Context()).Debug("inspect closed",
					"rounds", fm.rounds, "erased", fm.erased, "converged", fm.converged)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input image file")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject pixels that are neither pure black nor pure white")
	completeFiles(cmd, "input", inputImageExtensions)

	return cmd
}

// inspectModel is the bubbletea model behind the inspect command.
type inspectModel struct {
	name   string
	engine *thinning.Engine
	bitmap *bitmap.Bitmap

	initial   int
	last      thinning.Round
	rounds    int
	erased    int
	converged bool

	offsetX, offsetY int
	width, height    int
}

func newInspectModel(name string, b *bitmap.Bitmap) inspectModel {
	return inspectModel{
		name:    name,
		engine:  thinning.New(),
		bitmap:  b,
		initial: b.Count(),
		width:   80,
		height:  20,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n", " ":
			m = m.step()
		case "r":
			for !m.converged {
				m = m.step()
			}
		case "left", "h":
			m = m.pan(-panStep, 0)
		case "right", "l":
			m = m.pan(panStep, 0)
		case "up", "k":
			m = m.pan(0, -panStep)
		case "down", "j":
			m = m.pan(0, panStep)
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 1)
		m.height = max(msg.Height-5, 1)
		m = m.pan(0, 0)
	}
	return m, nil
}

// step runs one round unless the image has converged.
func (m inspectModel) step() inspectModel {
	if m.converged {
		return m
	}
	r := m.engine.Round(m.bitmap)
	m.last = r
	m.rounds = r.Index
	m.erased += r.Erased()
	m.converged = !r.Productive()
	return m
}

// pan moves the viewport and clamps it to the image.
func (m inspectModel) pan(dx, dy int) inspectModel {
	w, h := m.bitmap.LogicalSize()
	m.offsetX = clamp(m.offsetX+dx, 0, max(w-m.width, 0))
	m.offsetY = clamp(m.offsetY+dy, 0, max(h-m.height, 0))
	return m
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (m inspectModel) View() string {
	var b strings.Builder
	w, h := m.bitmap.LogicalSize()

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d×%d", w, h)))
	b.WriteString("\n\n")

	endY := min(m.offsetY+m.height, h)
	endX := min(m.offsetX+m.width, w)
	for y := m.offsetY; y < endY; y++ {
		var row strings.Builder
		for x := m.offsetX; x < endX; x++ {
			if m.bitmap.At(x+1, y+1) {
				row.WriteString(glyphForeground)
			} else {
				row.WriteString(glyphBackground)
			}
		}
		b.WriteString(m.renderRow(row.String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("n step  r run  ←↑↓→ pan  q quit"))

	return b.String()
}

func (m inspectModel) renderRow(row string) string {
	// Style runs of equal glyphs together to keep escape codes short.
	var out strings.Builder
	runes := []rune(row)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		run := string(runes[i:j])
		if string(runes[i]) == glyphForeground {
			out.WriteString(inspectPixelStyle.Render(run))
		} else {
			out.WriteString(inspectEmptyStyle.Render(run))
		}
		i = j
	}
	return out.String()
}

func (m inspectModel) status() string {
	parts := []string{
		fmt.Sprintf("round %s", StyleNumber.Render(fmt.Sprint(m.rounds))),
		fmt.Sprintf("erased %s (%d + %d)", StyleNumber.Render(fmt.Sprint(m.erased)), m.last.First, m.last.Second),
		fmt.Sprintf("foreground %s/%d", StyleNumber.Render(fmt.Sprint(m.initial-m.erased)), m.initial),
	}
	line := strings.Join(parts, StyleDim.Render(" · "))
	if m.converged {
		line += "  " + inspectDoneStyle.Render("converged")
	}
	return line
}
