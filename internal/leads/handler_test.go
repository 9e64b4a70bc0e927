package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

type fakeSheets struct {
	calls int
	err   error
	panic bool
}

func (f *fakeSheets) Append(context.Context, *Lead) error {
	f.calls++
	if f.panic {
		panic("sheets exploded")
	}
	return f.err
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) SendTaxCalculator(context.Context, *Lead) error {
	f.calls++
	return f.err
}

func submitRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"fullName": {" Jane Doe "},
		"email":    {"JANE@X.COM"},
		"phone":    {"+1 (555) 123-4567"},
		"state":    {"new-york"},
	}
}

func TestSubmit_Success(t *testing.T) {
	sheets := &fakeSheets{}
	notifier := &fakeNotifier{}
	handler := NewHandler(sheets, notifier, nil, nil)

	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(validForm()))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp messageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Success" {
		t.Errorf("expected Success message, got %q", resp.Message)
	}
	if sheets.calls != 1 || notifier.calls != 1 {
		t.Errorf("expected one call each, got sheets=%d notifier=%d", sheets.calls, notifier.calls)
	}
}

func TestSubmit_MissingRequiredFieldsSkipsDownstream(t *testing.T) {
	sheets := &fakeSheets{}
	notifier := &fakeNotifier{}
	handler := NewHandler(sheets, notifier, nil, nil)

	form := url.Values{"email": {"jane@x.com"}}
	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(form))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Name and email are required" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
	if sheets.calls != 0 || notifier.calls != 0 {
		t.Errorf("expected no downstream calls, got sheets=%d notifier=%d", sheets.calls, notifier.calls)
	}
}

func TestSubmit_WhitespaceNameRejected(t *testing.T) {
	sheets := &fakeSheets{}
	handler := NewHandler(sheets, &fakeNotifier{}, nil, nil)

	form := url.Values{"fullName": {"   "}, "email": {"jane@x.com"}}
	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(form))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if sheets.calls != 0 {
		t.Error("expected no sheet append for invalid submission")
	}
}

func TestSubmit_SheetsFailureStillSendsMail(t *testing.T) {
	sheets := &fakeSheets{err: errors.New("api quota exceeded")}
	notifier := &fakeNotifier{}
	handler := NewHandler(sheets, notifier, nil, nil)

	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(validForm()))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if notifier.calls != 1 {
		t.Errorf("mail send should still be attempted, got %d calls", notifier.calls)
	}

	// The response must not reveal which half failed.
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Service temporarily unavailable" {
		t.Errorf("expected generic error, got %q", resp.Error)
	}
	if strings.Contains(resp.Error, "quota") {
		t.Error("downstream cause leaked into response")
	}
}

func TestSubmit_MailFailureIsGeneric500(t *testing.T) {
	sheets := &fakeSheets{}
	notifier := &fakeNotifier{err: errors.New("535 authentication failed")}
	handler := NewHandler(sheets, notifier, nil, nil)

	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(validForm()))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if sheets.calls != 1 {
		t.Errorf("sheet append should have been attempted, got %d calls", sheets.calls)
	}
	if strings.Contains(w.Body.String(), "authentication") {
		t.Error("downstream cause leaked into response")
	}
}

func TestSubmit_PanickingSheetsDoesNotBlockMail(t *testing.T) {
	sheets := &fakeSheets{panic: true}
	notifier := &fakeNotifier{}
	handler := NewHandler(sheets, notifier, nil, nil)

	w := httptest.NewRecorder()
	handler.Submit(w, submitRequest(validForm()))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if notifier.calls != 1 {
		t.Errorf("mail send should still be attempted after panic, got %d calls", notifier.calls)
	}
}

func TestHealth(t *testing.T) {
	handler := NewHandler(&fakeSheets{}, &fakeNotifier{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy status, got %q", resp.Status)
	}
	if resp.Timestamp == "" {
		t.Error("expected timestamp to be set")
	}
}
