package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "github.com/ndy40/racing-pointsheet/internal/api/context"
	"github.com/ndy40/racing-pointsheet/internal/pkg/errors"
	"github.com/ndy40/racing-pointsheet/internal/pkg/validator"
	"github.com/ndy40/racing-pointsheet/internal/platform/models"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

type WebhookHandler struct {
	webhooks      *repositories.WebhookRepository
	subscriptions *repositories.WebhookSubscriptionRepository
}

func NewWebhookHandler(webhooks *repositories.WebhookRepository, subscriptions *repositories.WebhookSubscriptionRepository) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, subscriptions: subscriptions}
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string         `json:"name"`
		TargetURL string         `json:"target_url"`
		Platform  string         `json:"platform"`
		Secret    string         `json:"secret"`
		Config    map[string]any `json:"config"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := validator.ValidateTargetURL(req.TargetURL); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	platform := models.Platform(req.Platform)
	if !platform.IsValid() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown platform", req.Platform)
		return
	}

	webhook := &models.Webhook{
		Name:      req.Name,
		TargetURL: req.TargetURL,
		Platform:  platform,
		Secret:    req.Secret,
		Config:    req.Config,
	}

	if err := h.webhooks.Create(webhook); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, webhook)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.webhooks.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, webhooks)
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.webhooks.GetByID(paramFromContext(r, "webhook_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.webhooks.GetByID(paramFromContext(r, "webhook_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	var req struct {
		Name      *string        `json:"name"`
		TargetURL *string        `json:"target_url"`
		Platform  *string        `json:"platform"`
		Secret    *string        `json:"secret"`
		Config    map[string]any `json:"config"`
		Enabled   *bool          `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name != nil {
		webhook.Name = *req.Name
	}
	if req.TargetURL != nil {
		if err := validator.ValidateTargetURL(*req.TargetURL); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
			return
		}
		webhook.TargetURL = *req.TargetURL
	}
	if req.Platform != nil {
		platform := models.Platform(*req.Platform)
		if !platform.IsValid() {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown platform", *req.Platform)
			return
		}
		webhook.Platform = platform
	}
	if req.Secret != nil {
		webhook.Secret = *req.Secret
	}
	if req.Config != nil {
		webhook.Config = req.Config
	}
	if req.Enabled != nil {
		webhook.Enabled = *req.Enabled
	}

	if err := h.webhooks.Update(webhook); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.webhooks.Delete(paramFromContext(r, "webhook_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := paramFromContext(r, "webhook_id")
	webhook, err := h.webhooks.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	if err := h.webhooks.SetEnabled(id, !webhook.Enabled); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": !webhook.Enabled})
}

func (h *WebhookHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WebhookID    string `json:"webhook_id"`
		EventType    string `json:"event_type"`
		ResourceType string `json:"resource_type"`
		ResourceID   string `json:"resource_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if _, err := h.webhooks.GetByID(req.WebhookID); err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	sub := &models.WebhookSubscription{
		WebhookID:    req.WebhookID,
		EventType:    models.EventType(req.EventType),
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
	}
	if err := sub.Validate(); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := h.subscriptions.Create(sub); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *WebhookHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ListByWebhook(paramFromContext(r, "webhook_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *WebhookHandler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Delete(paramFromContext(r, "subscription_id")); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) EventTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.EventTypes())
}

func (h *WebhookHandler) Platforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Platforms())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func paramFromContext(r *http.Request, name string) string {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return params.ByName(name)
}
