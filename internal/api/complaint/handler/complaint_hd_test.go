package complaintHandler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ScamSOS/internal/api/complaint"
	complaintHandler "ScamSOS/internal/api/complaint/handler"
	"ScamSOS/internal/config"
	"ScamSOS/internal/entity"
	"ScamSOS/internal/middleware"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/document"
	"ScamSOS/pkg/handlerUtil"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
)

type fakeComplaintService struct {
	requests []complaint.ComplaintRequest
	formats  []string
	err      error
}

func (f *fakeComplaintService) FileComplaint(_ context.Context, _ *entity.Session, req complaint.ComplaintRequest, format string) (*complaint.FileComplaintResult, error) {
	f.requests = append(f.requests, req)
	f.formats = append(f.formats, format)
	if f.err != nil {
		return nil, f.err
	}
	return &complaint.FileComplaintResult{
		Document: &document.Document{
			FileName:    "complaint-01TEST.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.3 test"),
		},
		ArchiveURL: "https://bucket.example/complaint-01TEST.pdf?signed=1",
	}, nil
}

func newApp(t *testing.T, svc *fakeComplaintService) (*fiber.App, string) {
	t.Helper()
	logger := log.NewDiscardLogger()
	signer, _ := jwtPkg.NewSigner("test-secret")
	store := session.NewMemoryStore(time.Hour)
	_ = store.Save(context.Background(), &entity.Session{
		ID:      "sess-1",
		UserID:  "user-1",
		Name:    "Tan Ah Kow",
		Contact: "+6591234567",
		Address: "1 Orchard Road",
	})
	token, _, err := signer.Sign("sess-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mw := middleware.New(logger, signer, store)
	validate, err := config.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	complaintHandler.New(logger, validate, mw, svc).Start(app.Group("/api/v1"))
	return app, token
}

func post(t *testing.T, app *fiber.App, token, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestFileComplaintReturnsAttachment(t *testing.T) {
	svc := &fakeComplaintService{}
	app, token := newApp(t, svc)

	resp := post(t, app, token, "/api/v1/complaints?format=pdf", `{"situation":"Caller asked for my OTP.","amount":250}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="complaint-01TEST.pdf"` {
		t.Errorf("content disposition = %q", got)
	}
	if resp.Header.Get(complaintHandler.ArchiveURLHeader) == "" {
		t.Error("missing archive url header")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "%PDF-") {
		t.Errorf("body = %q", body)
	}

	if len(svc.requests) != 1 {
		t.Fatalf("service calls = %d", len(svc.requests))
	}
	req := svc.requests[0]
	if req.Name != "Tan Ah Kow" || req.Contact != "+6591234567" || req.Address != "1 Orchard Road" {
		t.Errorf("identity not prefilled from session: %+v", req)
	}
	if req.Amount != "250" {
		t.Errorf("amount = %q, want 250", req.Amount)
	}
	if svc.formats[0] != "pdf" {
		t.Errorf("format = %q", svc.formats[0])
	}
}

func TestFileComplaintRequiresSituation(t *testing.T) {
	svc := &fakeComplaintService{}
	app, token := newApp(t, svc)

	resp := post(t, app, token, "/api/v1/complaints", `{"situation":"   "}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body handlerUtil.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "VALIDATION_ERROR" || len(body.Fields) != 1 || body.Fields[0].Field != "situation" {
		t.Errorf("body = %+v", body)
	}
	if len(svc.requests) != 0 {
		t.Error("service should not run on invalid input")
	}
}

func TestFileComplaintRequiresSession(t *testing.T) {
	app, _ := newApp(t, &fakeComplaintService{})

	resp := post(t, app, "", "/api/v1/complaints", `{"situation":"x"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestFileComplaintMapsServiceErrors(t *testing.T) {
	app, token := newApp(t, &fakeComplaintService{err: complaint.ErrUnsupportedFormat})

	resp := post(t, app, token, "/api/v1/complaints?format=docx", `{"situation":"x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
