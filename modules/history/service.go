package history

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"jelly-icon-server/modules/auth"
	"jelly-icon-server/modules/common/config"
)

const (
	iconTable     = "jelly_icons"
	storageBucket = "icons"
)

// Service - the history/persistence bridge: Supabase Storage for image bytes,
// the jelly_icons table for metadata records.
type Service struct {
	cfg        *config.Config
	supabase   *supabase.Client
	httpClient *http.Client
}

// NewService - persistence bridge against the configured Supabase project
func NewService(cfg *config.Config) *Service {
	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ [History] Failed to create Supabase client: %v", err)
		return nil
	}

	log.Println("✅ [History] Service initialized")
	return &Service{
		cfg:        cfg,
		supabase:   supabaseClient,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SaveFromURL - persist a successful generation server-side. Hosted URLs are
// fetched; data URLs are decoded in place. Either way the bytes land in
// storage and a metadata record is written for the caller's identity.
func (s *Service) SaveFromURL(ctx context.Context, identity *auth.Identity, params SaveParams) (string, error) {
	if identity == nil {
		return "", auth.ErrNotAuthenticated
	}

	var (
		imageData   []byte
		contentType string
		err         error
	)
	if strings.HasPrefix(params.ImageURL, "data:") {
		imageData, contentType, err = decodeDataURL(params.ImageURL)
	} else {
		imageData, contentType, err = s.fetchImage(ctx, params.ImageURL)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	filePath := fmt.Sprintf("generated-icons/user-%s/%s%s",
		identity.Subject, uuid.NewString(), extensionFor(contentType))

	if err := s.uploadToStorage(ctx, filePath, imageData, contentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	insert := InsertParams{
		Prompt:      params.Prompt,
		StoragePath: filePath,
	}
	if params.Model != "" {
		insert.Model = &params.Model
	}
	if params.SourceName != "" {
		insert.SourceName = &params.SourceName
	}

	return s.Insert(ctx, identity, insert)
}

// Insert - write the metadata record. UserID always comes from the verified
// identity, never from the request body.
func (s *Service) Insert(ctx context.Context, identity *auth.Identity, params InsertParams) (string, error) {
	if identity == nil {
		return "", auth.ErrNotAuthenticated
	}
	if strings.TrimSpace(params.StoragePath) == "" {
		return "", fmt.Errorf("%w: storage path is required", ErrPersistence)
	}

	insertData := map[string]interface{}{
		"user_id":      identity.Subject,
		"prompt":       params.Prompt,
		"storage_path": params.StoragePath,
	}
	if params.Model != nil {
		insertData["model"] = *params.Model
	}
	if params.SourceName != nil {
		insertData["source_name"] = *params.SourceName
	}
	if params.SourceStoragePath != nil {
		insertData["source_storage_path"] = *params.SourceStoragePath
	}

	data, _, err := s.supabase.From(iconTable).
		Insert(insertData, false, "", "", "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert record: %v", ErrPersistence, err)
	}

	var records []IconRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return "", fmt.Errorf("%w: failed to parse insert response: %v", ErrPersistence, err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: no record returned", ErrPersistence)
	}

	log.Printf("💾 [History] Record created: %s (user: %s)", records[0].ID, identity.Subject)
	return records[0].ID, nil
}

// ListByUser - all records belonging to the caller, newest first, each with a
// resolved display URL. The user_id filter comes from the verified identity,
// so cross-user reads are structurally impossible.
func (s *Service) ListByUser(ctx context.Context, identity *auth.Identity) ([]IconRecordWithURL, error) {
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	data, _, err := s.supabase.From(iconTable).
		Select("*", "exact", false).
		Eq("user_id", identity.Subject).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query records: %v", ErrPersistence, err)
	}

	var records []IconRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse records: %v", ErrPersistence, err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	annotated := make([]IconRecordWithURL, 0, len(records))
	for _, record := range records {
		annotated = append(annotated, IconRecordWithURL{
			IconRecord: record,
			ImageURL:   s.displayURL(record.StoragePath),
		})
	}

	log.Printf("🔍 [History] Listed %d records for user %s", len(annotated), identity.Subject)
	return annotated, nil
}

// CreateSignedUploadURL - pre-signed upload location for the client-direct
// path (embedded data URLs decoded in the browser)
func (s *Service) CreateSignedUploadURL(ctx context.Context, identity *auth.Identity, fileName string) (*SignedUpload, error) {
	if identity == nil {
		return nil, auth.ErrNotAuthenticated
	}

	filePath := fmt.Sprintf("uploads/user-%s/%s-%s",
		identity.Subject, uuid.NewString()[:8], sanitizeFileName(fileName))

	signURL := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s",
		s.cfg.SupabaseURL, storageBucket, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", signURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SupabaseServiceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to request signed upload: %v", ErrPersistence, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: signed upload request failed (%d): %s", ErrPersistence, resp.StatusCode, string(body))
	}

	var signed struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse signed upload response: %v", ErrPersistence, err)
	}

	log.Printf("📤 [History] Signed upload URL issued for %s", filePath)
	return &SignedUpload{
		URL:  s.cfg.SupabaseURL + "/storage/v1" + signed.URL,
		Path: filePath,
	}, nil
}

// fetchImage - download hosted image bytes, content type from the response
func (s *Service) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	log.Printf("📥 [History] Fetched %d bytes (%s)", len(imageData), contentType)
	return imageData, contentType, nil
}

// uploadToStorage - raw upload into the icons bucket with the service key
func (s *Service) uploadToStorage(ctx context.Context, filePath string, imageData []byte, contentType string) error {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.SupabaseURL, storageBucket, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("📤 [History] Uploaded %d bytes to %s", len(imageData), filePath)
	return nil
}

// decodeDataURL - split "data:<mime>;base64,<payload>" into bytes + mime
func decodeDataURL(dataURL string) ([]byte, string, error) {
	rest := strings.TrimPrefix(dataURL, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("unsupported data URL encoding: %s", meta)
	}

	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "image/png"
	}

	imageData, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URL payload: %w", err)
	}
	return imageData, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func sanitizeFileName(fileName string) string {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "upload.png"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "-", "..", "-")
	return replacer.Replace(fileName)
}

// displayURL - public URL for stored bytes; the storage base override exists
// for CDN-fronted buckets
func (s *Service) displayURL(filePath string) string {
	if s.cfg.SupabaseStorageBaseURL != "" {
		return s.cfg.SupabaseStorageBaseURL + filePath
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.cfg.SupabaseURL, storageBucket, filePath)
}
