package filestorage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/paperarchive/internal/pkg/logger"
)

const defaultCloudinaryAPI = "https://api.cloudinary.com/v1_1"

// versionSegment matches the optional "v1712345678" path segment of delivery URLs
var versionSegment = regexp.MustCompile(`^v\d+$`)

// CloudinaryStorage stores files on Cloudinary through its signed REST API.
type CloudinaryStorage struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	HTTP      *http.Client
	now       func() time.Time
}

// NewCloudinaryStorage creates a Cloudinary-backed store
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) *CloudinaryStorage {
	return &CloudinaryStorage{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   defaultCloudinaryAPI,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

type cloudinaryUploadResult struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int64  `json:"bytes"`
}

type cloudinaryDestroyResult struct {
	Result string `json:"result"`
}

// ResourceTypeFor picks the Cloudinary resource type for a MIME type.
// Images are delivered as "image"; everything else (PDFs included) as "raw".
func ResourceTypeFor(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return "image"
	}
	return "raw"
}

// Upload sends content to Cloudinary under upload.Folder
func (c *CloudinaryStorage) Upload(ctx context.Context, content io.Reader, upload Upload) (*StoredFile, error) {
	resourceType := ResourceTypeFor(upload.MimeType)

	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"api_key":   c.APIKey,
	}
	if upload.Folder != "" {
		params["folder"] = upload.Folder
	}
	params["signature"] = c.sign(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}

	part, err := w.CreateFormFile("file", "upload"+upload.Extension)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create form file failed: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("cloudinary: write file failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cloudinary: close form failed: %w", err)
	}

	var result cloudinaryUploadResult
	if err := c.post(ctx, resourceType+"/upload", w.FormDataContentType(), &buf, &result); err != nil {
		return nil, err
	}

	fileURL := result.SecureURL
	if fileURL == "" {
		fileURL = result.URL
	}
	logger.Info().Str("public_id", result.PublicID).Str("resource_type", resourceType).Msg("File uploaded to Cloudinary")

	return &StoredFile{URL: fileURL, PublicID: result.PublicID, MimeType: upload.MimeType}, nil
}

// Delete destroys the asset behind fileURL. An asset Cloudinary no longer
// knows about counts as deleted.
func (c *CloudinaryStorage) Delete(ctx context.Context, fileURL string) error {
	resourceType, publicID, err := ParseCloudinaryURL(fileURL)
	if err != nil {
		return err
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"api_key":   c.APIKey,
	}
	params["signature"] = c.sign(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	var result cloudinaryDestroyResult
	if err := c.post(ctx, resourceType+"/destroy", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), &result); err != nil {
		return err
	}

	switch result.Result {
	case "ok":
		logger.Info().Str("public_id", publicID).Msg("File deleted from Cloudinary")
		return nil
	case "not found":
		logger.Warn().Str("public_id", publicID).Msg("File to delete does not exist on Cloudinary")
		return nil
	default:
		return fmt.Errorf("cloudinary: destroy %s returned %q", publicID, result.Result)
	}
}

func (c *CloudinaryStorage) post(ctx context.Context, endpoint, contentType string, body io.Reader, out interface{}) error {
	target := fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.BaseURL, "/"), c.CloudName, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary: %s failed (%d): %s", endpoint, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("cloudinary: decode response failed: %w", err)
	}
	return nil
}

// sign computes the Cloudinary API signature from the given params.
// api_key, file and resource_type are not part of the signature.
func (c *CloudinaryStorage) sign(params map[string]string) string {
	excludeKeys := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !excludeKeys[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	payload := strings.Join(pairs, "&") + c.APISecret
	h := sha1.New()
	h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ParseCloudinaryURL extracts the resource type and public id from a delivery
// URL such as https://res.cloudinary.com/demo/image/upload/v17/question_papers/abc.png.
// Image public ids drop the file extension; raw public ids keep it.
func ParseCloudinaryURL(fileURL string) (resourceType, publicID string, err error) {
	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIdx := -1
	for i, s := range segments {
		if s == "upload" && i >= 1 {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 0 || uploadIdx+1 >= len(segments) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}

	resourceType = segments[uploadIdx-1]
	rest := segments[uploadIdx+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	publicID = strings.Join(rest, "/")
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	}
	if publicID == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}
	return resourceType, publicID, nil
}
