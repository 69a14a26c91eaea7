package objectstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claydohscope/storefront/pkg/errors"
)

const storageService = "supabase-storage"

// SupabaseStore uploads to Supabase Storage with the service-role key
type SupabaseStore struct {
	baseURL        string
	serviceRoleKey string
	httpClient     *http.Client
	logger         *zap.Logger
	now            func() time.Time
}

// NewSupabaseStore creates a store for the project at projectURL
func NewSupabaseStore(projectURL, serviceRoleKey string, logger *zap.Logger) *SupabaseStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseStore{
		baseURL:        strings.TrimSuffix(projectURL, "/") + "/storage/v1",
		serviceRoleKey: serviceRoleKey,
		httpClient:     &http.Client{Timeout: 5 * time.Minute},
		logger:         logger,
		now:            time.Now,
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error) {
	if err := checkBucket(bucket); err != nil {
		return "", err
	}
	object := bucket + "/" + ObjectName(s.now(), name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/object/"+object, r)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceRoleKey)
	req.Header.Set("apikey", s.serviceRoleKey)
	req.Header.Set("cache-control", "3600")
	req.Header.Set("x-upsert", "false")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Storage upload failed", zap.String("object", object), zap.Error(err))
		return "", &errors.ErrUpstream{Service: storageService, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &body)
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		s.logger.Error("Storage rejected upload",
			zap.String("object", object),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return "", &errors.ErrUpstream{Service: storageService, Status: resp.StatusCode, Message: msg}
	}

	return s.baseURL + "/object/public/" + object, nil
}
