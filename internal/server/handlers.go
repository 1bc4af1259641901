package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"NewsletterDigest/internal/domain"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	subscribers, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusBadGateway, err)
		return
	}
	s.respond(w, http.StatusOK, subscribers)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	subscriber, err := s.store.Get(r.Context(), email)
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	s.respond(w, http.StatusOK, subscriber)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	subscriber, ok := decodeSubscriber(w, r)
	if !ok {
		return
	}

	if err := s.store.Add(r.Context(), subscriber); err != nil {
		s.fail(w, http.StatusBadGateway, err)
		return
	}
	s.respond(w, http.StatusCreated, subscriber)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	subscriber, ok := decodeSubscriber(w, r)
	if !ok {
		return
	}
	subscriber.Email = email

	if err := s.store.Update(r.Context(), subscriber); err != nil {
		s.fail(w, http.StatusBadGateway, err)
		return
	}
	s.respond(w, http.StatusOK, subscriber)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), email); err != nil {
		s.fail(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), email); err != nil {
		s.fail(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<p>You have been unsubscribed.</p>"))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.fail(w, http.StatusServiceUnavailable, errNoRunner)
		return
	}

	// Manual runs are detached from the request: the trigger returns
	// immediately while the pipeline works in the background.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.runner.Run(ctx); err != nil {
			s.logger.Error("manual run failed", "error", err)
		}
	}()

	s.respond(w, http.StatusAccepted, map[string]string{"status": "run started"})
}

var errNoRunner = &apiError{"newsletter runner is not configured"}

type apiError struct{ msg string }

func (e *apiError) Error() string { return e.msg }

func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "email")
	email, err := url.PathUnescape(raw)
	if err != nil || !strings.Contains(email, "@") {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return "", false
	}
	return email, true
}

func decodeSubscriber(w http.ResponseWriter, r *http.Request) (domain.Subscriber, bool) {
	var subscriber domain.Subscriber
	if err := json.NewDecoder(r.Body).Decode(&subscriber); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return domain.Subscriber{}, false
	}
	if !strings.Contains(subscriber.Email, "@") {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return domain.Subscriber{}, false
	}
	return subscriber, true
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}
