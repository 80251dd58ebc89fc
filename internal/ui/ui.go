package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/movies"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/session"
	"github.com/desertthunder/marquee/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	HomeView
	UnauthorizedView
)

func (v ViewState) String() string {
	switch v {
	case HomeView:
		return "home"
	case UnauthorizedView:
		return "unauthorized"
	default:
		return "login"
	}
}

// ModelOpts contains the dependencies of a [Model]. Backend and Session are required.
type ModelOpts struct {
	Backend  services.Backend
	Session  *session.Context
	Routes   auth.Routes
	Logger   *log.Logger
	Sort     movies.SortKey
	OnLogout func() // runs after the logout request, e.g. to drop stored cookies
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	view     ViewState
	path     string
	from     string
	backend  services.Backend
	session  *session.Context
	routes   auth.Routes
	logger   *log.Logger
	onLogout func()
	bridge   *bridge

	ctrl    *movies.Controller
	sortKey movies.SortKey
	list    list.Model
	cursor  int // selected comment when comments are expanded

	login   *loginForm
	add     *form
	editor  textinput.Model
	confirm *confirmRequest
	busy    bool

	notice    string
	noticeErr bool

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Routes == nil {
		opts.Routes = auth.DefaultRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Sort == "" {
		opts.Sort = movies.SortTotalVotes
	}

	ctx, cancel := context.WithCancel(ctx)

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	editor := newInput("Share your thoughts", 500)

	return &Model{
		ctx:      ctx,
		cancel:   cancel,
		backend:  opts.Backend,
		session:  opts.Session,
		routes:   opts.Routes,
		logger:   shared.WithLogger(opts.Logger, "component", "ui"),
		onLogout: opts.OnLogout,
		bridge:   newBridge(),
		sortKey:  opts.Sort,
		list:     l,
		login:    newLoginForm(),
		editor:   editor,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init routes to the home view of the stored session, or the login view when anonymous.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.navigate(auth.HomePath(m.session.Current().Role)),
		m.bridge.waitForNotice(),
		m.bridge.waitForPrompt(),
		textinput.Blink,
	)
}

// ViewState returns the view being shown.
func (m *Model) ViewState() ViewState { return m.view }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-12)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
			return m, m.quit()
		}
		if m.confirm != nil {
			return m, m.handleConfirmKeys(msg)
		}
		switch m.view {
		case LoginView:
			return m, m.handleLoginKeys(msg)
		case HomeView:
			return m, m.handleHomeKeys(msg)
		case UnauthorizedView:
			return m, m.handleUnauthorizedKeys(msg)
		}

	case Msg:
		return m, m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgAuthenticated:
		res := msg.data.(authResult)
		m.busy = false
		if res.err != nil {
			m.setNotice(shared.UserMessage(res.err, "Login failed. Please try again."), true)
			return nil
		}
		if err := m.session.Set(res.session); err != nil {
			m.logger.Warn("failed to persist session", "error", err)
		}
		m.login = newLoginForm()
		m.setNotice(fmt.Sprintf("Signed in as %s", res.session.Name), false)
		return m.navigate(m.landing(res.session))

	case MsgLoggedOut:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("logout request failed", "error", err)
		}
		m.setNotice("Signed out", false)
		return nil

	case MsgMoviesLoaded:
		if err, _ := msg.data.(error); err != nil {
			m.setNotice("Could not load movies. Press r to retry.", true)
		}
		return m.refresh()

	case MsgActionDone:
		res := msg.data.(actionResult)
		if res.err != nil {
			m.reportLocal(res.err)
		}
		if m.ctrl != nil && !m.ctrl.Editor().Active() {
			m.editor.Blur()
		}
		return m.refresh()

	case MsgNotice:
		n := msg.data.(movies.Notice)
		m.setNotice(n.Message, true)
		return tea.Batch(m.refresh(), m.bridge.waitForNotice())

	case MsgConfirm:
		req := msg.data.(confirmRequest)
		m.confirm = &req
		return m.bridge.waitForPrompt()
	}
	return nil
}

// landing picks the page to show after signing in.
func (m *Model) landing(sess models.Session) string {
	if m.from != "" && m.routes.Resolve(m.from, sess).Allow {
		return m.from
	}
	return auth.HomePath(sess.Role)
}

// navigate resolves path through the gate and switches to the view it lands on.
func (m *Model) navigate(path string) tea.Cmd {
	d := m.routes.Resolve(path, m.session.Current())
	target := path
	if !d.Allow {
		target = d.Redirect
		m.from = d.From
		m.logger.Debug("redirected", "path", path, "to", target)
	}
	m.path = target

	switch target {
	case auth.PathAdminHome, auth.PathMemberHome:
		m.from = ""
		return m.enterHome()
	case auth.PathUnauthorized:
		m.leaveHome()
		m.view = UnauthorizedView
	default:
		m.leaveHome()
		m.view = LoginView
	}
	return nil
}

func (m *Model) enterHome() tea.Cmd {
	m.leaveHome()
	m.ctrl = movies.New(movies.Opts{
		Backend:   m.backend,
		Session:   m.session,
		Notifier:  m.bridge,
		Confirmer: m.bridge,
		Logger:    m.logger,
	})
	m.ctrl.Attach(m.ctx)
	m.view = HomeView
	m.cursor = 0
	m.list.Title = m.title()

	ctrl := m.ctrl
	return func() tea.Msg {
		return moviesLoadedMsg(ctrl.Load(m.ctx))
	}
}

func (m *Model) leaveHome() {
	if m.ctrl != nil {
		m.ctrl.Close()
		m.ctrl = nil
	}
	m.add = nil
	m.editor.Blur()
	m.list.SetItems(nil)
}

func (m *Model) quit() tea.Cmd {
	if m.confirm != nil {
		m.confirm.reply <- false
		m.confirm = nil
	}
	m.leaveHome()
	m.cancel()
	return tea.Quit
}

func (m *Model) title() string {
	sess := m.session.Current()
	name := sess.Name
	if name == "" {
		name = sess.Role.String()
	}
	return fmt.Sprintf("Movies • sorted by %s • %s (%s)", m.sortKey.Label(), name, sess.Role)
}

// refresh rebuilds the list from the controller, keeping the selected movie.
func (m *Model) refresh() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	selected, ok := m.selected()

	ms := m.ctrl.Sorted(m.sortKey)
	cmd := m.list.SetItems(movieItems(ms))
	for i, mv := range ms {
		if ok && mv.ID == selected.ID {
			m.list.Select(i)
			break
		}
	}
	m.list.Title = m.title()

	if cur, ok := m.selected(); ok && m.cursor >= len(cur.Comments) {
		m.cursor = max(len(cur.Comments)-1, 0)
	}
	return cmd
}

func (m *Model) selected() (models.Movie, bool) {
	item, ok := m.list.SelectedItem().(movieItem)
	if !ok || m.ctrl == nil {
		return models.Movie{}, false
	}
	return m.ctrl.Movie(item.movie.ID)
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// reportLocal shows errors the controller rejects without a request. Backend failures arrive as notices.
func (m *Model) reportLocal(err error) {
	switch {
	case errors.Is(err, shared.ErrCancelled):
		m.setNotice("Cancelled", false)
	case errors.Is(err, shared.ErrInFlight):
		m.setNotice("Still working on the previous request", true)
	case errors.Is(err, shared.ErrForbidden):
		m.setNotice("That action is not available for your role", true)
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMovieNotFound),
		errors.Is(err, shared.ErrCommentNotFound):
		m.setNotice(shared.UserMessage(err, err.Error()), true)
	}
}

// run executes fn as a command and reports its outcome as [MsgActionDone].
func (m *Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg(action, fn(ctx))
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirm.reply <- true
		m.confirm = nil
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.confirm.reply <- false
		m.confirm = nil
	}
	return nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.quit()
	case key.Matches(msg, m.keys.signup):
		m.login.toggle()
		return nil
	case key.Matches(msg, m.keys.prev):
		m.login.move(-1)
		return nil
	case key.Matches(msg, m.keys.next):
		m.login.move(1)
		return nil
	case key.Matches(msg, m.keys.submit):
		if !m.login.last() {
			m.login.move(1)
			return nil
		}
		return m.submitLogin()
	}
	return m.login.update(msg)
}

func (m *Model) submitLogin() tea.Cmd {
	if m.busy {
		return nil
	}
	creds := m.login.credentials()
	if err := creds.Validate(); err != nil {
		m.setNotice(shared.UserMessage(err, ""), true)
		return nil
	}

	m.busy = true
	m.setNotice("Signing in...", false)
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		var sess models.Session
		var err error
		if creds.Signup {
			sess, err = backend.Signup(ctx, creds)
		} else {
			sess, err = backend.Login(ctx, creds)
		}
		return authenticatedMsg(sess, err)
	}
}

func (m *Model) handleUnauthorizedKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	case key.Matches(msg, m.keys.toggle):
		return m.navigate(auth.HomePath(m.session.Current().Role))
	}
	return nil
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	if m.add != nil {
		return m.handleAddKeys(msg)
	}
	if m.ctrl.Editor().Active() {
		return m.handleEditorKeys(msg)
	}

	movie, ok := m.selected()
	expanded := ok && m.ctrl.Expanded() == movie.ID

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	case key.Matches(msg, m.keys.reload):
		ctrl := m.ctrl
		return func() tea.Msg { return moviesLoadedMsg(ctrl.Load(m.ctx)) }
	case key.Matches(msg, m.keys.sort):
		m.sortKey = m.sortKey.Next()
		return m.refresh()
	case expanded && key.Matches(msg, m.keys.up):
		m.cursor = max(m.cursor-1, 0)
		return nil
	case expanded && key.Matches(msg, m.keys.down):
		m.cursor = min(m.cursor+1, max(len(movie.Comments)-1, 0))
		return nil
	case key.Matches(msg, m.keys.upvote), key.Matches(msg, m.keys.downvote):
		if !ok {
			return nil
		}
		up := key.Matches(msg, m.keys.upvote)
		return m.run("vote", func(ctx context.Context) error { return m.ctrl.Vote(ctx, movie.ID, up) })
	}

	if !ok {
		if key.Matches(msg, m.keys.add) {
			return m.openAdd()
		}
		return m.forwardList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		m.ctrl.ToggleComments(movie.ID)
		m.cursor = 0
		return nil
	case key.Matches(msg, m.keys.add):
		return m.openAdd()
	case key.Matches(msg, m.keys.comment):
		return m.openEditor(movie)
	case key.Matches(msg, m.keys.remove):
		if expanded && len(movie.Comments) > 0 {
			cm := movie.Comments[m.cursor]
			return m.run("delete-comment", func(ctx context.Context) error {
				return m.ctrl.DeleteComment(ctx, movie.ID, cm.ID)
			})
		}
		return m.run("delete", func(ctx context.Context) error { return m.ctrl.DeleteMovie(ctx, movie.ID) })
	}
	return m.forwardList(msg)
}

func (m *Model) forwardList(msg tea.KeyMsg) tea.Cmd {
	prev := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != prev {
		m.cursor = 0
	}
	return cmd
}

func (m *Model) openAdd() tea.Cmd {
	if m.session.Current().Role != models.RoleMember {
		m.setNotice("Only members can add movies", true)
		return nil
	}
	m.add = newAddForm()
	return textinput.Blink
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.add = nil
		return nil
	case key.Matches(msg, m.keys.prev):
		m.add.move(-1)
		return nil
	case key.Matches(msg, m.keys.next):
		m.add.move(1)
		return nil
	case key.Matches(msg, m.keys.submit):
		if !m.add.last() {
			m.add.move(1)
			return nil
		}
		p, err := m.ctrl.BeginAdd(m.add.value(fieldTitle), m.add.value(fieldDescription))
		if err != nil {
			m.reportLocal(err)
			return nil
		}
		m.add = nil
		return tea.Batch(m.refresh(), m.run("add", func(ctx context.Context) error {
			_, err := m.ctrl.FinishAdd(ctx, p)
			return err
		}))
	}
	return m.add.update(msg)
}

func (m *Model) openEditor(movie models.Movie) tea.Cmd {
	var err error
	if _, own := movie.CommentBy(m.session.Current().Identifier); own {
		err = m.ctrl.StartEdit(movie.ID)
	} else {
		err = m.ctrl.StartNew(movie.ID)
	}
	if err != nil {
		m.reportLocal(err)
		return nil
	}

	m.editor.SetValue(m.ctrl.Draft(movie.ID))
	m.editor.CursorEnd()
	m.editor.Focus()
	return textinput.Blink
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) tea.Cmd {
	ed := m.ctrl.Editor()
	switch {
	case key.Matches(msg, m.keys.back):
		m.ctrl.Cancel()
		m.editor.Blur()
		return nil
	case key.Matches(msg, m.keys.submit):
		m.ctrl.SetDraft(ed.MovieID, m.editor.Value())
		return m.run("comment", func(ctx context.Context) error { return m.ctrl.SaveComment(ctx, ed.MovieID) })
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.ctrl.SetDraft(ed.MovieID, m.editor.Value())
	return cmd
}

func (m *Model) logout() tea.Cmd {
	backend, ctx, onLogout := m.backend, m.ctx, m.onLogout
	m.leaveHome()
	if err := m.session.Clear(); err != nil {
		m.logger.Warn("failed to clear session", "error", err)
	}
	m.navigate(auth.PathLogin)
	return func() tea.Msg {
		err := backend.Logout(ctx)
		if onLogout != nil {
			onLogout()
		}
		return loggedOutMsg(err)
	}
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == LoginView:
		cmd = m.login.update(msg)
	case m.view == HomeView && m.add != nil:
		cmd = m.add.update(msg)
	case m.view == HomeView && m.editor.Focused():
		m.editor, cmd = m.editor.Update(msg)
	case m.view == HomeView:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case HomeView:
		body = m.renderHome()
	case UnauthorizedView:
		body = m.renderUnauthorized()
	}
	return body + "\n" + m.renderFooter()
}

func (m *Model) renderLogin() string {
	heading := "Sign in"
	toggle := key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "create an account"))
	if m.login.signup {
		heading = "Create an account"
		toggle = key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "sign in instead"))
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("marquee • " + heading))
	b.WriteString("\n")
	if m.from != "" {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Sign in to continue to %s", m.from)) + "\n\n")
	}
	b.WriteString(m.login.view(loginLabels))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, toggle, m.keys.back}))
	return b.String()
}

func (m *Model) renderUnauthorized() string {
	title := styles.err.Render("Unauthorized")
	info := fmt.Sprintf("\n\nYour account (%s) cannot open %s.\n", m.session.Current().Role, m.from)
	home := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go home"))
	return title + info + "\n" + m.help.ShortHelpView([]key.Binding{home, m.keys.logout, m.keys.quit})
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")

	if movie, ok := m.selected(); ok && m.ctrl.Expanded() == movie.ID {
		b.WriteString(m.renderComments(movie))
	}

	switch {
	case m.add != nil:
		b.WriteString("\n" + styles.title.Render("Add a movie") + "\n")
		b.WriteString(m.add.view(addLabels))
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.submit, m.keys.back}))
	case m.ctrl != nil && m.ctrl.Editor().Active():
		label := "New comment"
		if m.ctrl.Editor().State == movies.EditingExisting {
			label = "Edit your comment"
		}
		b.WriteString("\n" + label + "\n" + m.editor.View() + "\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back}))
	default:
		b.WriteString(m.help.ShortHelpView(m.homeKeys()))
	}
	return b.String()
}

func (m *Model) homeKeys() []key.Binding {
	bindings := []key.Binding{m.keys.up, m.keys.down, m.keys.sort, m.keys.toggle}
	switch m.session.Current().Role {
	case models.RoleMember:
		bindings = append(bindings, m.keys.add, m.keys.upvote, m.keys.downvote, m.keys.comment)
	case models.RoleAdmin:
		bindings = append(bindings, m.keys.remove)
	}
	return append(bindings, m.keys.reload, m.keys.logout, m.keys.quit)
}

func (m *Model) renderComments(movie models.Movie) string {
	if len(movie.Comments) == 0 {
		return styles.muted.Render("No comments yet") + "\n"
	}

	var b strings.Builder
	for i, cm := range movie.Comments {
		line := fmt.Sprintf("%s: %s", cm.Author(), cm.Body)
		if !cm.Deletable() {
			line += " (has votes)"
		}
		if i == m.cursor {
			b.WriteString(styles.selected.Render(line) + "\n")
		} else {
			b.WriteString(styles.muted.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	var parts []string
	if m.confirm != nil {
		parts = append(parts, styles.warn.Render(m.confirm.prompt)+" "+m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	}
	if m.ctrl != nil && m.ctrl.PendingCount() > 0 {
		parts = append(parts, styles.pending.Render("Saving new movie..."))
	}
	if m.notice != "" {
		if m.noticeErr {
			parts = append(parts, styles.err.Render(m.notice))
		} else {
			parts = append(parts, styles.ok.Render(m.notice))
		}
	}
	return strings.Join(parts, "\n")
}
