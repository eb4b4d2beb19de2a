package chat

const (
	headerHeight   = 2
	quickBarHeight = 1
	statusHeight   = 1
	inputPadding   = 2
	// title, two spacers, reply hint and comment box around the tree
	commentsChrome = 5
)

func (m *Model) sidebarWidth() int {
	w := m.width / 4
	if w < 24 {
		w = 24
	}
	if w > 36 {
		w = 36
	}
	return w
}

func (m *Model) commentsWidth() int {
	if m.panel == nil || !m.panel.IsOpen() {
		return 0
	}
	w := m.width / 3
	if w < 30 {
		w = 30
	}
	if w > 48 {
		w = 48
	}
	return w
}

func (m *Model) mainWidth() int {
	w := m.width - m.sidebarWidth() - m.commentsWidth() - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	width := m.mainWidth()
	inputWidth := width - inputPadding
	if inputWidth < 1 {
		inputWidth = 1
	}
	m.input.SetWidth(inputWidth)
	lines := m.input.LineCount()
	if lines < 1 {
		lines = 1
	}
	if lines > inputMaxHeight {
		lines = inputMaxHeight
	}
	m.input.SetHeight(lines)

	m.searchInput.Width = m.sidebarWidth() - 4
	if cw := m.commentsWidth(); cw > 0 {
		m.commentBox.Width = cw - 4
		m.commentsView.Width = cw - 2
		m.commentsView.Height = m.height - commentsChrome
		if m.commentsView.Height < 1 {
			m.commentsView.Height = 1
		}
	}

	m.viewport.Width = width
	m.viewport.Height = m.height - headerHeight - quickBarHeight - m.input.Height() - statusHeight
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	// Width changes rewrap every bubble.
	m.lastContent = ""
	m.refreshViewport(false)
}
