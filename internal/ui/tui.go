package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pinvirt/internal/alloc"
	"pinvirt/internal/pinning"
	"pinvirt/internal/store"
	"pinvirt/internal/topology"
)

type step int

const (
	stepVMName step = iota
	stepVCPUs
	stepSocket
	stepPolicies
	stepConfirm
	stepSaving
	stepDone
	stepError
)

const policyItems = 3 // multi-socket, hyperthreads, continue

type Model struct {
	topo   *topology.Topology
	st     *store.Store
	pinned store.PinningMap
	used   map[int]bool

	step      step
	textInput textinput.Model
	sockets   []int
	cursor    int

	vmName       string
	vcpus        int
	targetSocket int
	multiSocket  bool
	useHT        bool

	assigned []int
	inputErr string
	err      error
	width    int
	height   int
}

func NewModel(topo *topology.Topology, st *store.Store, pinned store.PinningMap) Model {
	ti := textinput.New()
	ti.Placeholder = "vm name..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 30
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		topo:         topo,
		st:           st,
		pinned:       pinned,
		used:         pinned.UsedCPUs(),
		step:         stepVMName,
		textInput:    ti,
		sockets:      topo.Sockets(),
		targetSocket: alloc.NoSocket,
		width:        80,
		height:       24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

type saveResultMsg struct {
	err error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case saveResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = stepError
		} else {
			m.step = stepDone
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.step != stepVMName && m.step != stepVCPUs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.step != stepVMName && m.step != stepVCPUs {
				m = m.moveCursor(-1)
				return m, nil
			}

		case "down", "j":
			if m.step != stepVMName && m.step != stepVCPUs {
				m = m.moveCursor(1)
				return m, nil
			}

		case " ":
			if m.step == stepPolicies {
				m = m.togglePolicy()
				return m, nil
			}

		case "enter":
			return m.handleEnter()

		case "esc":
			if m.step > stepVMName && m.step < stepSaving {
				m.step--
				m.cursor = 0
				m.inputErr = ""
				if m.step == stepVMName {
					m.textInput.SetValue(m.vmName)
					m.textInput.Placeholder = "vm name..."
					m.textInput.Focus()
					return m, textinput.Blink
				}
				if m.step == stepVCPUs {
					m.textInput.SetValue(strconv.Itoa(m.vcpus))
					m.textInput.Focus()
					return m, textinput.Blink
				}
				return m, nil
			}
		}
	}

	if m.step == stepVMName || m.step == stepVCPUs {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) moveCursor(delta int) Model {
	switch m.step {
	case stepSocket:
		count := len(m.sockets) + 1 // "any socket" entry first
		m.cursor = (m.cursor + delta + count) % count
	case stepPolicies:
		m.cursor = (m.cursor + delta + policyItems) % policyItems
	case stepConfirm:
		m.cursor = (m.cursor + 1) % 2
	}
	return m
}

func (m Model) togglePolicy() Model {
	switch m.cursor {
	case 0:
		m.multiSocket = !m.multiSocket
	case 1:
		m.useHT = !m.useHT
	}
	return m
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepVMName:
		name := strings.TrimSpace(m.textInput.Value())
		if name == "" {
			m.inputErr = "name cannot be empty"
			return m, nil
		}
		if _, exists := m.pinned[name]; exists {
			m.inputErr = fmt.Sprintf("VM %q is already pinned, remove it first", name)
			return m, nil
		}
		m.vmName = name
		m.inputErr = ""
		m.textInput.SetValue("")
		m.textInput.Placeholder = "number of vCPUs..."
		m.textInput.Focus()
		m.step = stepVCPUs
		return m, textinput.Blink

	case stepVCPUs:
		val, err := strconv.Atoi(strings.TrimSpace(m.textInput.Value()))
		if err != nil || val < 1 || val > len(m.topo.CPUs) {
			m.inputErr = fmt.Sprintf("enter a number between 1 and %d", len(m.topo.CPUs))
			return m, nil
		}
		m.vcpus = val
		m.inputErr = ""
		m.cursor = 0
		m.step = stepSocket
		return m, nil

	case stepSocket:
		if m.cursor == 0 {
			m.targetSocket = alloc.NoSocket
		} else {
			m.targetSocket = m.sockets[m.cursor-1]
		}
		m.cursor = 0
		m.step = stepPolicies
		return m, nil

	case stepPolicies:
		if m.cursor < policyItems-1 {
			return m.togglePolicy(), nil
		}
		req := alloc.Request{
			VCPUs:            m.vcpus,
			TargetSocket:     m.targetSocket,
			AllowMultiSocket: m.multiSocket,
			UseHyperthreads:  m.useHT,
		}
		assigned, err := alloc.Allocate(m.topo, req, m.used)
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.assigned = assigned
		m.inputErr = ""
		m.cursor = 0
		m.step = stepConfirm
		return m, nil

	case stepConfirm:
		if m.cursor == 1 {
			return m, tea.Quit
		}
		m.step = stepSaving
		return m, m.savePinning()

	case stepDone, stepError:
		return m, tea.Quit
	}
	return m, nil
}

// savePinning re-reads the state under the store lock so a pinning recorded
// by a concurrent invocation since the wizard started is not clobbered.
func (m Model) savePinning() tea.Cmd {
	return func() tea.Msg {
		release, err := m.st.Lock()
		if err != nil {
			return saveResultMsg{err: err}
		}
		defer release()

		pinned := m.st.Load()
		if _, exists := pinned[m.vmName]; exists {
			return saveResultMsg{err: fmt.Errorf("VM %q was pinned concurrently", m.vmName)}
		}
		used := pinned.UsedCPUs()
		for _, id := range m.assigned {
			if used[id] {
				return saveResultMsg{err: fmt.Errorf("cpu %d was assigned concurrently", id)}
			}
		}

		pinned[m.vmName] = m.assigned
		return saveResultMsg{err: m.st.Save(pinned)}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTopology())
	b.WriteString("\n\n")

	switch m.step {
	case stepVMName:
		b.WriteString(m.renderTextPrompt("? Which VM should be pinned?"))
	case stepVCPUs:
		b.WriteString(m.renderTextPrompt(fmt.Sprintf("? How many vCPUs? (1 - %d)", len(m.topo.CPUs))))
	case stepSocket:
		b.WriteString(m.renderSocketSelection())
	case stepPolicies:
		b.WriteString(m.renderPolicySelection())
	case stepConfirm:
		b.WriteString(m.renderConfirmation())
	case stepSaving:
		b.WriteString("  Saving pinning state...")
	case stepDone:
		b.WriteString(m.renderSuccess())
	case stepError:
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("✗ Error: %v", m.err)))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderTopology() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" pinvirt — vCPU Pinning "))
	b.WriteString("\n\n")

	cores := m.topo.Cores()
	free := m.topo.FreeIDs(m.used)
	b.WriteString(fmt.Sprintf("  %s %d    %s %d    %s %d    %s %d\n",
		socketStyle.Render("Sockets:"), len(m.sockets),
		cpuStyle.Render("Cores:"), len(cores),
		dimStyle.Render("Threads:"), len(m.topo.CPUs),
		freeStyle.Render("Free:"), len(free)))
	b.WriteString("\n")

	for _, socketID := range m.sockets {
		var threads, freeCount int
		for _, core := range cores {
			if core.SocketID != socketID {
				continue
			}
			threads += len(core.Threads)
			for _, id := range core.Threads {
				if !m.used[id] {
					freeCount++
				}
			}
		}
		b.WriteString(fmt.Sprintf("  %s %d  %s\n",
			socketStyle.Render("Socket"), socketID,
			dimStyle.Render(fmt.Sprintf("(%d threads, %d free)", threads, freeCount))))
	}

	return b.String()
}

func (m Model) renderTextPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(prompt))
	b.WriteString("\n\n")
	b.WriteString("  > ")
	b.WriteString(m.textInput.View())
	if m.inputErr != "" {
		b.WriteString("\n\n")
		b.WriteString(highlightStyle.Render("  " + m.inputErr))
	}
	return b.String()
}

func (m Model) renderSocketSelection() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("? Preferred socket"))
	b.WriteString("\n\n")

	labels := make([]string, 0, len(m.sockets)+1)
	labels = append(labels, "Any socket")
	for _, id := range m.sockets {
		labels = append(labels, fmt.Sprintf("Socket %d", id))
	}

	for i, label := range labels {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("  ▸ "))
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString("    ")
			b.WriteString(label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderPolicySelection() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("? Allocation policy"))
	b.WriteString("\n\n")

	toggles := []struct {
		label string
		desc  string
		on    bool
	}{
		{"Allow multiple sockets", "Spill over to other sockets when the preferred one is full", m.multiSocket},
		{"Use hyperthreads", "Pack both threads of each core before moving on", m.useHT},
	}

	for i, t := range toggles {
		checkbox := "[ ]"
		if t.on {
			checkbox = freeStyle.Render("[✓]")
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("  ▸ "))
			b.WriteString(fmt.Sprintf("%s %s", checkbox, selectedStyle.Render(t.label)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s", checkbox, t.label))
		}
		b.WriteString("\n")
		b.WriteString("        " + dimStyle.Render(t.desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cursor == policyItems-1 {
		b.WriteString(cursorStyle.Render("  ▸ "))
		b.WriteString(selectedStyle.Render("Continue"))
	} else {
		b.WriteString("    Continue")
	}

	if m.inputErr != "" {
		b.WriteString("\n\n")
		b.WriteString(highlightStyle.Render("  " + m.inputErr))
	}
	return b.String()
}

func (m Model) renderConfirmation() string {
	var b strings.Builder

	b.WriteString(freeStyle.Render("✓ Allocation computed"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  VM:      %s\n", highlightStyle.Render(m.vmName)))
	b.WriteString(fmt.Sprintf("  CPUs:    %s\n", cpuStyle.Render(pinning.Ranges(m.assigned))))
	b.WriteString(fmt.Sprintf("  Pinning: %s\n", cpuStyle.Render(pinning.String(m.assigned))))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("? Save this assignment?"))
	b.WriteString("\n\n")

	if m.cursor == 0 {
		b.WriteString(cursorStyle.Render("  ▸ "))
		b.WriteString(selectedStyle.Render("Yes, save"))
		b.WriteString("\n")
		b.WriteString("    No, cancel")
	} else {
		b.WriteString("    Yes, save")
		b.WriteString("\n")
		b.WriteString(cursorStyle.Render("  ▸ "))
		b.WriteString(selectedStyle.Render("No, cancel"))
	}

	return b.String()
}

func (m Model) renderSuccess() string {
	var b strings.Builder
	b.WriteString(freeStyle.Render("✓ Pinned"))
	b.WriteString(fmt.Sprintf(" VM %s\n\n", m.vmName))
	b.WriteString("  Pinning: ")
	b.WriteString(cpuStyle.Render(pinning.String(m.assigned)))
	return b.String()
}

func (m Model) renderHelp() string {
	keyStyle := lipgloss.NewStyle().Foreground(secondaryColor)

	var parts []string
	switch m.step {
	case stepVMName, stepVCPUs:
		parts = append(parts, keyStyle.Render("enter")+dimStyle.Render(" next"))
	case stepPolicies:
		parts = append(parts, keyStyle.Render("↑/↓")+dimStyle.Render(" navigate"))
		parts = append(parts, keyStyle.Render("space")+dimStyle.Render(" toggle"))
		parts = append(parts, keyStyle.Render("enter")+dimStyle.Render(" select"))
	default:
		parts = append(parts, keyStyle.Render("↑/↓")+dimStyle.Render(" navigate"))
		parts = append(parts, keyStyle.Render("enter")+dimStyle.Render(" select"))
	}
	parts = append(parts, keyStyle.Render("esc")+dimStyle.Render(" back"))
	parts = append(parts, keyStyle.Render("ctrl+c")+dimStyle.Render(" quit"))

	return strings.Join(parts, dimStyle.Render(" • "))
}

// Run starts the interactive pinning wizard.
func Run(topo *topology.Topology, st *store.Store) error {
	model := NewModel(topo, st, st.Load())
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
