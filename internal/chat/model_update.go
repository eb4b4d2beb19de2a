package chat

import tea "github.com/charmbracelet/bubbletea"

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case passTickMsg:
		return m.handlePassTick()
	case threadsMsg:
		return m.handleThreadsMsg(msg)
	case messagesMsg:
		return m.handleMessagesMsg(msg)
	case wakeMsg:
		return m.handleWakeMsg(msg)
	case wakeClosedMsg:
		return m, nil
	case callEndedMsg:
		return m, tea.Batch(m.remoteCallEnded(), m.waitForCallEnd())
	case commentsTickMsg:
		return m.handleCommentsTick()
	case commentsMsg:
		return m.handleCommentsMsg(msg)
	case likeStateMsg:
		return m.handleLikeStateMsg(msg)
	case likeResultMsg:
		return m.handleLikeResultMsg(msg)
	case commentActionMsg:
		return m.handleCommentActionMsg(msg)
	case searchTickMsg:
		return m.handleSearchTick(msg)
	case searchResultsMsg:
		return m.handleSearchResults(msg)
	case openedMsg:
		return m.handleOpenedMsg(msg)
	case actionMsg:
		return m.handleActionMsg(msg)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	return m, nil
}
