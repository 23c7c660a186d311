package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-vmctx/layout"
)

var (
	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseModel struct {
	err      error
	layout   *layout.Layout
	opts     *options
	result   *lookup
	filename string
	regions  []layout.RegionInfo
	input    textinput.Model
	selected int
	state    browseState
}

type browseState int

const (
	stateSelectRegion browseState = iota
	stateInputIndex
	stateShowResult
)

// lookup is the outcome of addressing one record of the selected region.
type lookup struct {
	err    error
	fields []fieldOffset
	region layout.RegionInfo
	index  uint32
	offset layout.Offset
}

type fieldOffset struct {
	field  layout.FieldInfo
	offset layout.Offset
}

type loadedMsg struct {
	err     error
	layout  *layout.Layout
	regions []layout.RegionInfo
}

func newBrowseModel(opts *options, filename string) *browseModel {
	return &browseModel{
		opts:     opts,
		filename: filename,
		state:    stateSelectRegion,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *browseModel) loadModule() tea.Msg {
	l, err := loadLayout(context.Background(), m.opts, m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	regions, err := l.Regions()
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{layout: l, regions: regions}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputIndex {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectRegion && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectRegion && m.selected < len(m.regions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectRegion:
				if len(m.regions) == 0 {
					return m, nil
				}
				m.state = stateInputIndex
				return m, m.prepareInput()

			case stateInputIndex:
				m.result = m.lookup(m.input.Value())
				m.state = stateShowResult
				return m, nil

			case stateShowResult:
				m.state = stateSelectRegion
				m.result = nil
			}

		case "esc":
			switch m.state {
			case stateInputIndex, stateShowResult:
				m.state = stateSelectRegion
				m.result = nil
				return m, nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.layout = msg.layout
		m.regions = msg.regions
	}

	if m.state == stateInputIndex {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *browseModel) prepareInput() tea.Cmd {
	ri := m.regions[m.selected]
	ti := textinput.New()
	ti.Prompt = "index: "
	ti.Placeholder = "0"
	if ri.Count > 0 {
		ti.Placeholder = fmt.Sprintf("0..%d", ri.Count-1)
	}
	ti.CharLimit = 12
	ti.Width = 20
	m.input = ti
	return m.input.Focus()
}

func (m *browseModel) lookup(s string) *lookup {
	ri := m.regions[m.selected]
	idx, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return &lookup{region: ri, err: fmt.Errorf("invalid index %q", s)}
	}

	res := &lookup{region: ri, index: uint32(idx)}
	res.offset, res.err = m.layout.OffsetOf(ri.Region, res.index)
	if res.err != nil {
		return res
	}
	for _, f := range m.layout.Record(ri.Record).Fields {
		off, err := m.layout.FieldOffsetOf(ri.Region, res.index, f.Field)
		if err != nil {
			res.err = err
			return res
		}
		res.fields = append(res.fields, fieldOffset{field: f, offset: off})
	}
	return res
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.layout == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("vmctx"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %d-byte pointers", m.layout.PointerSize())))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectRegion:
		b.WriteString("Select a region:\n\n")
		for i, ri := range m.regions {
			line := fmt.Sprintf("%-20s count %-6d start %-8d size %d", ri.Region, ri.Count, ri.Start, ri.Size)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter address a record • q quit"))

	case stateInputIndex:
		ri := m.regions[m.selected]
		b.WriteString(fmt.Sprintf("Addressing %s (%s records, %d bytes each)\n\n",
			regionStyle.Render(ri.Region.String()), ri.Record, ri.RecordSize))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter compute • esc back"))

	case stateShowResult:
		b.WriteString(m.formatLookup(m.result))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *browseModel) formatLookup(res *lookup) string {
	name := regionStyle.Render(fmt.Sprintf("%s[%d]", res.region.Region, res.index))
	if res.err != nil {
		return name + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", res.err))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s at %s\n\n", name, resultStyle.Render(strconv.Itoa(int(res.offset)))))
	for _, fo := range res.fields {
		kind := "scalar"
		if fo.field.Pointer {
			kind = "pointer"
		}
		b.WriteString(fmt.Sprintf("  %s %s  %d bytes, %s\n",
			fieldStyle.Render(fmt.Sprintf("%-18s", fo.field.Field)),
			resultStyle.Render(fmt.Sprintf("%6d", fo.offset)),
			fo.field.Size, kind))
	}
	return strings.TrimRight(b.String(), "\n")
}

func runInteractive(opts *options, filename string) error {
	p := tea.NewProgram(newBrowseModel(opts, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
