package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newContactRouter(mailer *fakeMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	contact := service.NewContactService(mailer, "noreply@healthdatalab.com", "office@healthdatalab.com", kafka.NoopPublisher{}, zap.NewNop())
	h := NewContactHandler(contact, testRecorder(), zap.NewNop())

	r := gin.New()
	r.POST("/api/v1/contact", h.SendMessage)
	return r
}

func postContact(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return perform(router, req)
}

func TestContactValidMessageSent(t *testing.T) {
	mailer := &fakeMailer{}
	router := newContactRouter(mailer)

	body := `{"name":"Jane Doe","email":"jane@example.com","subject":"Pricing","message":"How much is the Pro course?"}`
	w := postContact(router, body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "office@healthdatalab.com", mailer.sent[0].To)
}

func TestContactMissingFieldsRejected(t *testing.T) {
	mailer := &fakeMailer{}
	router := newContactRouter(mailer)

	w := postContact(router, `{"email":"jane@example.com"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required fields")
	assert.Empty(t, mailer.sent)
}

// Бот, заполнивший honeypot, получает успех даже без обязательных полей
func TestContactHoneypotSilentSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	router := newContactRouter(mailer)

	w := postContact(router, `{"botField":"gotcha"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Empty(t, mailer.sent)
}

func TestContactBadEmailRejected(t *testing.T) {
	mailer := &fakeMailer{}
	router := newContactRouter(mailer)

	body := `{"name":"Jane","email":"not-an-email","message":"hello"}`
	w := postContact(router, body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mailer.sent)
}

func TestContactDeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: fmt.Errorf("smtp down")}
	router := newContactRouter(mailer)

	body := `{"name":"Jane","email":"jane@example.com","message":"hello"}`
	w := postContact(router, body)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to send email")
}
