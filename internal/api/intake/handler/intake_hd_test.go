package intakeHandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"ScamSOS/internal/api/intake"
	intakeHandler "ScamSOS/internal/api/intake/handler"
	"ScamSOS/internal/config"
	"ScamSOS/internal/middleware"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/handlerUtil"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/log"
	"ScamSOS/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type fakeIntakeService struct {
	calls []intake.RegisterInput
	err   error
}

func (f *fakeIntakeService) Register(_ context.Context, in intake.RegisterInput) (*intake.RegisterResponse, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &intake.RegisterResponse{UserID: "u1", SessionToken: "tok", Warnings: []string{}}, nil
}

func newApp(t *testing.T, svc *fakeIntakeService) *fiber.App {
	t.Helper()
	logger := log.NewDiscardLogger()
	signer, _ := jwtPkg.NewSigner("test-secret")
	mw := middleware.New(logger, signer, session.NewMemoryStore(time.Hour))
	validate, err := config.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	intakeHandler.New(logger, validate, mw, svc, utils.New()).Start(app.Group("/api/v1"))
	return app
}

type part struct {
	field, fileName, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.fileName+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = pw.Write(f.data)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRegisterMissingFieldsIsValidationError(t *testing.T) {
	svc := &fakeIntakeService{}
	app := newApp(t, svc)

	resp, err := app.Test(multipartRequest(t, map[string]string{"contact": "+919800000000", "address": "   "}), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body handlerUtil.ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, raw)
	}
	if body.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", body.Code)
	}
	fields := map[string]bool{}
	for _, f := range body.Fields {
		fields[f.Field] = true
	}
	if !fields["name"] || !fields["address"] || fields["contact"] {
		t.Fatalf("unexpected field errors %+v", body.Fields)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not run on invalid input")
	}
}

func TestRegisterRejectsUnknownCategory(t *testing.T) {
	svc := &fakeIntakeService{}
	app := newApp(t, svc)

	resp, _ := app.Test(multipartRequest(t, map[string]string{
		"name": "Asha", "contact": "+91", "address": "12 MG Road", "category": "OPZ",
	}), -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not run on invalid input")
	}
}

func TestRegisterPassesEvidenceToService(t *testing.T) {
	svc := &fakeIntakeService{}
	app := newApp(t, svc)

	req := multipartRequest(t,
		map[string]string{"name": " Asha Rao ", "contact": "+919800000000", "address": "12 MG Road"},
		part{field: "recording", fileName: "call.mp3", contentType: "audio/mpeg", data: []byte("mp3-bytes")},
		part{field: "screenshot", fileName: "sms.png", contentType: "image/png", data: []byte("png-bytes")},
	)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}
	if len(svc.calls) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.calls))
	}
	in := svc.calls[0]
	if in.Name != "Asha Rao" {
		t.Fatalf("name not trimmed: %q", in.Name)
	}
	if in.Recording == nil || string(in.Recording.Data) != "mp3-bytes" {
		t.Fatalf("recording not forwarded: %+v", in.Recording)
	}
	if in.Screenshot == nil || in.Screenshot.ContentType != "image/png" {
		t.Fatalf("screenshot not forwarded: %+v", in.Screenshot)
	}
}

func TestRegisterRejectsWrongScreenshotType(t *testing.T) {
	svc := &fakeIntakeService{}
	app := newApp(t, svc)

	req := multipartRequest(t,
		map[string]string{"name": "Asha", "contact": "+91", "address": "x"},
		part{field: "screenshot", fileName: "notes.txt", contentType: "text/plain", data: []byte("hi")},
	)

	resp, _ := app.Test(req, -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not run with an invalid screenshot")
	}
}

func TestRegisterBackendRejectionIsBadGateway(t *testing.T) {
	svc := &fakeIntakeService{err: intake.ErrRegistrationRejected}
	app := newApp(t, svc)

	resp, _ := app.Test(multipartRequest(t, map[string]string{"name": "Asha", "contact": "+91", "address": "x"}), -1)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	var body handlerUtil.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "REGISTRATION_REJECTED" {
		t.Fatalf("expected REGISTRATION_REJECTED, got %s", body.Code)
	}
}
