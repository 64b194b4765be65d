package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"study-quiz/internal/domain"
	"study-quiz/internal/logger"
	"study-quiz/internal/view"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const stateKey = "view_state"

var questionCounts = []int{1, 2, 3, 5}

type typeOption struct {
	Value string
	Label string
}

var questionTypes = []typeOption{
	{Value: string(domain.QuestionTypeAny), Label: "모두"},
	{Value: string(domain.QuestionTypeMultipleChoice), Label: "객관식"},
	{Value: string(domain.QuestionTypeShortAnswer), Label: "주관식(단답형)"},
}

type homePage struct {
	Subjects []string
}

type studyPage struct {
	State          *view.State
	Outcomes       map[int]view.Outcome
	Correct        int
	Total          int
	QuestionCounts []int
	QuestionTypes  []typeOption
}

// StudyHandler serves the server rendered study pages. The view state of
// each visitor lives in their session.
type StudyHandler struct {
	store     *session.Store
	requester view.Requester
	pages     map[string]*template.Template
}

// NewStudyHandler parses the page templates.
func NewStudyHandler(store *session.Store, requester view.Requester) (*StudyHandler, error) {
	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "study"} {
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &StudyHandler{store: store, requester: requester, pages: pages}, nil
}

// RegisterRoutes mounts the pages on router.
func (h *StudyHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.Home)
	router.Get("/study", h.Study)
	router.Post("/study/generate", h.Generate)
	router.Post("/study/answers", h.SubmitAnswers)
	router.Post("/study/retry", h.Retry)
}

// Home lists the known subjects.
func (h *StudyHandler) Home(c *fiber.Ctx) error {
	return h.render(c, "home", homePage{Subjects: view.KnownSubjects})
}

// Study shows the page for the subject query parameter. Entering a new
// subject starts a fresh state.
func (h *StudyHandler) Study(c *fiber.Ctx) error {
	sess, state, err := h.load(c)
	if err != nil {
		return err
	}

	subject := c.Query("subject")
	if state == nil || (subject != "" && subject != state.Subject) {
		state = view.New(subject)
		if err := h.save(sess, state); err != nil {
			return err
		}
	}

	page := studyPage{
		State:          state,
		QuestionCounts: questionCounts,
		QuestionTypes:  questionTypes,
	}
	if state.Submitted {
		page.Outcomes = make(map[int]view.Outcome)
		for _, o := range state.Outcomes() {
			page.Outcomes[o.Question.ID] = o
		}
		page.Correct, page.Total = state.Score()
	}
	return h.render(c, "study", page)
}

// Generate applies the form options and requests a new quiz.
func (h *StudyHandler) Generate(c *fiber.Ctx) error {
	sess, state, err := h.load(c)
	if err != nil {
		return err
	}
	if state == nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	num, _ := strconv.Atoi(c.FormValue("numQuestions"))
	state.UpdateForm(view.Form{
		LearnedContent: c.FormValue("learnedContent"),
		Mode:           domain.Mode(c.FormValue("mode")),
		NumQuestions:   num,
		QuestionType:   domain.QuestionType(c.FormValue("questionType")),
	})
	state.RequestQuiz(c.UserContext(), h.requester)

	if state.Error != "" {
		logger.FromContext(c.UserContext()).Info("Quiz request failed", zap.String("message", state.Error))
	}
	return h.saveAndReturn(c, sess, state)
}

// SubmitAnswers records the posted answers and reveals the results.
func (h *StudyHandler) SubmitAnswers(c *fiber.Ctx) error {
	sess, state, err := h.load(c)
	if err != nil {
		return err
	}
	if state == nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	if state.Result != nil {
		for _, q := range state.Result.Questions {
			state.RecordAnswer(q.ID, c.FormValue(fmt.Sprintf("q-%d", q.ID)))
		}
	}
	state.Submit()
	return h.saveAndReturn(c, sess, state)
}

// Retry clears the answers of the current quiz.
func (h *StudyHandler) Retry(c *fiber.Ctx) error {
	sess, state, err := h.load(c)
	if err != nil {
		return err
	}
	if state == nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	state.Retry()
	return h.saveAndReturn(c, sess, state)
}

func (h *StudyHandler) saveAndReturn(c *fiber.Ctx, sess *session.Session, state *view.State) error {
	if err := h.save(sess, state); err != nil {
		return err
	}
	return c.Redirect(studyURL(state.Subject), fiber.StatusSeeOther)
}

func (h *StudyHandler) load(c *fiber.Ctx) (*session.Session, *view.State, error) {
	sess, err := h.store.Get(c)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}

	raw, _ := sess.Get(stateKey).(string)
	if raw == "" {
		return sess, nil, nil
	}
	var state view.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logger.FromContext(c.UserContext()).Warn("Discarding unreadable view state", zap.Error(err))
		return sess, nil, nil
	}
	return sess, &state, nil
}

func (h *StudyHandler) save(sess *session.Session, state *view.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding view state: %w", err)
	}
	sess.Set(stateKey, string(raw))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (h *StudyHandler) render(c *fiber.Ctx, name string, data any) error {
	c.Type("html", "utf-8")
	return h.pages[name].ExecuteTemplate(c, "base.html", data)
}

func studyURL(subject string) string {
	if subject == "" {
		return "/study"
	}
	return "/study?subject=" + url.QueryEscape(subject)
}
