package contacts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the contact routes under /contacts.
func (h *Handler) Register(r *mux.Router) {
	sub := r.PathPrefix("/contacts").Subrouter()
	sub.HandleFunc("", h.findAll).Methods(http.MethodGet)
	sub.HandleFunc("/", h.findAll).Methods(http.MethodGet)
	sub.HandleFunc("", h.create).Methods(http.MethodPost)
	sub.HandleFunc("/", h.create).Methods(http.MethodPost)
	sub.HandleFunc("/friends/{id}", h.findFriendByID).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.findByID).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", h.delete).Methods(http.MethodDelete)
}

func (h *Handler) findAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.FindAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) findByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.log.Info("find contact", zap.Int64("id", id))
	c, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) findFriendByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.log.Info("find friend", zap.Int64("id", id))
	c, err := h.svc.FindFriendByID(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.log.Info("create contact", zap.String("name", c.Name))
	out, err := h.svc.Create(r.Context(), c)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.log.Info("update contact", zap.Int64("id", id))
	out, err := h.svc.Update(r.Context(), id, c)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.log.Info("delete contact", zap.Int64("id", id))
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Contact, bool) {
	var c Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return c, false
	}
	if fields := c.Validate(); fields != nil {
		for f, msg := range fields {
			h.log.Warn("invalid input", zap.String("field", f), zap.String("cause", msg))
		}
		writeJSON(w, http.StatusBadRequest, fields)
		return c, false
	}
	return c, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var mismatch *MismatchedIDsError
	switch {
	case errors.Is(err, ErrContactNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
