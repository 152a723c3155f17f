package server

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pathakanu/nudge/internal/escalation"
	"github.com/pathakanu/nudge/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	from, body string
	reply      string
	err        error
}

func (b *fakeBot) Reply(_ context.Context, from, body string) (string, error) {
	b.from, b.body = from, body
	return b.reply, b.err
}

type fakeSweeper struct {
	calls int
	err   error
}

func (s *fakeSweeper) Sweep(context.Context) (escalation.Report, error) {
	s.calls++
	return escalation.Report{}, s.err
}

func newTestRouter(bot Replier, sweeper Sweeper, reg prometheus.Gatherer) http.Handler {
	return NewRouter(&Config{
		Bot:      bot,
		Sweeper:  sweeper,
		Gatherer: reg,
		Logger:   log.New(io.Discard, "", 0),
	})
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var doc struct {
		XMLName xml.Name `xml:"Response"`
		Message string   `xml:"Message"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	return doc.Message
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	bot := &fakeBot{reply: "Done! 'call John' marked complete."}
	h := newTestRouter(bot, &fakeSweeper{}, nil)

	rec := postForm(t, h, "/twilio/webhook", url.Values{"From": {"whatsapp:+15550001111"}, "Body": {"done"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Equal(t, "Done! 'call John' marked complete.", decodeMessage(t, rec))
	assert.Equal(t, "whatsapp:+15550001111", bot.from)
	assert.Equal(t, "done", bot.body)
}

func TestWebhookNormalizesSender(t *testing.T) {
	bot := &fakeBot{reply: "ok"}
	h := newTestRouter(bot, &fakeSweeper{}, nil)

	postForm(t, h, "/twilio/webhook", url.Values{"From": {"15550001111"}, "Body": {"help"}})
	assert.Equal(t, "whatsapp:+15550001111", bot.from)
}

func TestWebhookWithoutSender(t *testing.T) {
	bot := &fakeBot{reply: "unused"}
	h := newTestRouter(bot, &fakeSweeper{}, nil)

	rec := postForm(t, h, "/twilio/webhook", url.Values{"Body": {"help"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, missingSender, decodeMessage(t, rec))
	assert.Empty(t, bot.body)
}

func TestWebhookStoreFailure(t *testing.T) {
	h := newTestRouter(&fakeBot{err: errors.New("db offline")}, &fakeSweeper{}, nil)

	rec := postForm(t, h, "/twilio/webhook", url.Values{"From": {"whatsapp:+15550001111"}, "Body": {"done"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSweepEndpoint(t *testing.T) {
	sweeper := &fakeSweeper{}
	h := newTestRouter(&fakeBot{}, sweeper, nil)

	rec := postForm(t, h, "/sweep", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, 1, sweeper.calls)

	sweeper.err = errors.New("db offline")
	rec = postForm(t, h, "/sweep", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	m.Inbound("help")
	h := newTestRouter(&fakeBot{}, &fakeSweeper{}, reg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nudge_bot_inbound_messages_total{intent="help"} 1`)
}
