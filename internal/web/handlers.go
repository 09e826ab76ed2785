package web

import (
	"encoding/json"
	"errors"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/godilite/survey-form/internal/form"
	"github.com/godilite/survey-form/internal/overlay"
	"github.com/godilite/survey-form/internal/submit"
	"github.com/godilite/survey-form/internal/survey"
	"go.uber.org/zap"
)

type Handlers struct {
	submitter Submitter
	history   HistoryLister
	boards    *boards
	page      *template.Template
	logger    *zap.Logger
}

// NewHandlers wires the page routes. history may be nil, in which case
// /history is not served.
func NewHandlers(submitter Submitter, history HistoryLister, logger *zap.Logger) *Handlers {
	if submitter == nil {
		panic("nil Submitter provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		submitter: submitter,
		history:   history,
		boards:    newBoards(),
		page:      template.Must(template.New("page").Parse(pageHTML)),
		logger:    logger.Named("web"),
	}
}

func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("POST /submit", h.handleSubmit)
	mux.HandleFunc("POST /dismiss", h.handleDismiss)
	mux.HandleFunc("GET /health", h.handleHealth)
	if h.history != nil {
		mux.HandleFunc("GET /history", h.handleHistory)
	}
	return mux
}

type starView struct {
	Value   int
	Checked bool
}

type groupView struct {
	Key    string
	Prompt string
	Stars  []starView
}

type pageView struct {
	Groups  []groupView
	Overlay template.HTML
}

func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	h.render(w, http.StatusOK, survey.Payload{}, h.boards.lookup(session))
}

func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	out := h.submitter.Submit(r.Context(), session, form.NewValuesPage(r.PostForm))

	board := h.boards.get(session)

	status := http.StatusOK
	if errors.Is(out.Err, submit.ErrSubmissionInFlight) {
		status = http.StatusConflict
		board.Offer(out.Overlay)
	} else {
		board.Show(out.Overlay)
	}
	h.render(w, status, out.Payload, board)
}

func (h *Handlers) handleDismiss(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	board := h.boards.lookup(session)
	if board == nil || !board.Dismiss(r.PostForm.Get("overlay_id")) {
		h.logger.Debug("dismiss of inactive overlay", zap.String("session", session))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Error("failed to read prediction history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read history"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handlers) render(w http.ResponseWriter, status int, selected survey.Payload, board *overlay.Board) {
	view := pageView{Groups: make([]groupView, 0, len(survey.Questions))}
	for _, q := range survey.Questions {
		current, _ := selected.Get(q.Key)
		g := groupView{Key: q.Key, Prompt: q.Prompt}
		for v := survey.MinRating; v <= survey.MaxRating; v++ {
			g.Stars = append(g.Stars, starView{Value: v, Checked: v == current})
		}
		view.Groups = append(view.Groups, g)
	}

	if active, ok := activeOverlay(board); ok {
		html, err := active.HTML()
		if err != nil {
			h.logger.Error("failed to render overlay", zap.Error(err))
		} else {
			view.Overlay = html
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Execute(w, view); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

func activeOverlay(board *overlay.Board) (overlay.Overlay, bool) {
	if board == nil {
		return overlay.Overlay{}, false
	}
	return board.Active()
}

// Sweep forgets sessions idle for longer than the session cookie lives and
// returns how many were dropped.
func (h *Handlers) Sweep() int {
	evicted := h.boards.evictIdle(sessionIdle)
	for _, session := range evicted {
		h.submitter.Forget(session)
	}
	if len(evicted) > 0 {
		h.logger.Debug("idle sessions evicted", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (h *Handlers) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
