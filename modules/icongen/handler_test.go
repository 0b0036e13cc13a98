package icongen

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jelly-icon-server/modules/prompt"
)

func newTestHandler(providerURL string) *Handler {
	return NewHandler(NewService(testConfig(providerURL)), nil, nil, nil)
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/generate-icon", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	return rec
}

func TestHandleGenerateMissingPrompt(t *testing.T) {
	h := newTestHandler("http://unused.invalid")

	rec := postJSON(t, h, `{"prompt":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Error != "Invalid prompt" {
		t.Errorf("error = %q, want \"Invalid prompt\"", resp.Error)
	}
}

func TestHandleGenerateInvalidBody(t *testing.T) {
	h := newTestHandler("http://unused.invalid")

	rec := postJSON(t, h, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGenerateSuccess(t *testing.T) {
	var upstreamPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload generationPayload
		json.NewDecoder(r.Body).Decode(&payload)
		upstreamPrompt = payload.Prompt
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://images.example/out.png"}},
		})
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	rec := postJSON(t, h, `{"prompt":"a smiling sun"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.URL != "https://images.example/out.png" {
		t.Errorf("url = %s", result.URL)
	}

	if !strings.Contains(upstreamPrompt, prompt.JellySystemPrompt) {
		t.Error("upstream prompt missing the canonical jelly specification")
	}
	if !strings.Contains(upstreamPrompt, "Create a jelly 3D icon for: a smiling sun") {
		t.Error("upstream prompt missing the description")
	}
}

func TestHandleGenerateUpstreamErrorMapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "content policy violation"},
		})
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	rec := postJSON(t, h, `{"prompt":"something disallowed"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp errorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "content policy violation" {
		t.Errorf("error = %q, want the provider message passed through", resp.Error)
	}
}

func TestHandleGenerateMissingCredentialHidden(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.OpenAIAPIKey = ""
	h := NewHandler(NewService(cfg), nil, nil, nil)

	rec := postJSON(t, h, `{"prompt":"a ghost"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp errorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if strings.Contains(resp.Error, "OPENAI") || strings.Contains(resp.Error, "key") {
		t.Errorf("error %q leaks credential details", resp.Error)
	}
	if resp.Error != "Server configuration error" {
		t.Errorf("error = %q, want \"Server configuration error\"", resp.Error)
	}
}

func TestHandleGeneratePlannerDegrades(t *testing.T) {
	var upstreamPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload generationPayload
		json.NewDecoder(r.Body).Decode(&payload)
		upstreamPrompt = payload.Prompt
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://images.example/out.png"}},
		})
	}))
	defer server.Close()

	// The handler carries no planner; usePlanner must degrade to the base
	// prompt instead of failing the request.
	h := newTestHandler(server.URL)
	rec := postJSON(t, h, `{"prompt":"a rocket","usePlanner":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(upstreamPrompt, prompt.JellySystemPrompt) {
		t.Error("degraded prompt should still be the full enhanced prompt")
	}
}

func TestHandleGenerateMultipartUsesEditEndpoint(t *testing.T) {
	var editPath string
	var upstreamPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		editPath = r.URL.Path
		if err := r.ParseMultipartForm(8 << 20); err == nil {
			upstreamPrompt = r.FormValue("prompt")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"b64_json": "aWNvbg=="}},
		})
	}))
	defer server.Close()

	var logo bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 20, G: 40, B: 200, A: 255})
		}
	}
	if err := png.Encode(&logo, img); err != nil {
		t.Fatalf("failed to encode logo: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("prompt", "our blue logo")
	part, _ := writer.CreateFormFile("file", "logo.png")
	part.Write(logo.Bytes())
	writer.Close()

	req := httptest.NewRequest("POST", "/api/generate-icon", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	h := newTestHandler(server.URL)
	h.HandleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if editPath != "/images/edits" {
		t.Errorf("path = %s, want /images/edits when a file is attached", editPath)
	}
	// A solid blue logo drives the extracted palette into the prompt
	if !strings.Contains(upstreamPrompt, "Icon color: #1428C8") {
		t.Errorf("extracted palette missing from prompt")
	}
}

func TestHandleGenerateExplicitColorsBeatPalette(t *testing.T) {
	var upstreamPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload generationPayload
		json.NewDecoder(r.Body).Decode(&payload)
		upstreamPrompt = payload.Prompt
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://images.example/out.png"}},
		})
	}))
	defer server.Close()

	h := newTestHandler(server.URL)
	rec := postJSON(t, h, `{"prompt":"a fox","baseColor":"#101010","iconColor":"#EFEFEF"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(upstreamPrompt, "Base color: #101010") ||
		!strings.Contains(upstreamPrompt, "Icon color: #EFEFEF") {
		t.Error("caller-provided colors not applied")
	}
}
