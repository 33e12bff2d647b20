package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/repositories"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/filestorage"
)

// memPaperStore mirrors the SQL semantics of PaperRepository in memory.
type memPaperStore struct {
	mu         sync.Mutex
	papers     []models.QuestionPaper
	countErr   error
	listErr    error
	createErr  error
	listCalls  int
	countCalls int
	clock      time.Time
}

func newMemPaperStore(papers ...models.QuestionPaper) *memPaperStore {
	return &memPaperStore{papers: papers, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memPaperStore) matching(f models.PaperFilter) []models.QuestionPaper {
	out := []models.QuestionPaper{}
	for _, p := range m.papers {
		if matchesFilter(p, f) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

func matchesFilter(p models.QuestionPaper, f models.PaperFilter) bool {
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		term := strings.ToLower(strings.TrimSpace(*f.Search))
		desc := ""
		if p.Description != nil {
			desc = *p.Description
		}
		found := false
		for _, field := range []string{p.Title, p.Course, desc, p.Subject} {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Subject != nil && strings.TrimSpace(*f.Subject) != "" && !strings.EqualFold(p.Subject, strings.TrimSpace(*f.Subject)) {
		return false
	}
	if f.Year != nil && p.Year != *f.Year {
		return false
	}
	if f.Semester != nil && strings.TrimSpace(*f.Semester) != "" && !strings.EqualFold(p.Semester, strings.TrimSpace(*f.Semester)) {
		return false
	}
	return true
}

func (m *memPaperStore) CountPapers(_ context.Context, f models.PaperFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.matching(f))), nil
}

func (m *memPaperStore) ListPapers(_ context.Context, f models.PaperFilter, offset, limit uint64) ([]models.QuestionPaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	all := m.matching(f)
	if offset >= uint64(len(all)) {
		return []models.QuestionPaper{}, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], nil
}

func (m *memPaperStore) ListPapersByUploader(_ context.Context, uploaderID uuid.UUID) ([]models.QuestionPaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.QuestionPaper{}
	for _, p := range m.matching(models.PaperFilter{}) {
		if p.UploadedBy == uploaderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPaperStore) GetPaperByID(_ context.Context, id uuid.UUID) (*models.QuestionPaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.papers {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrPaperNotFound
}

func (m *memPaperStore) CreatePaper(_ context.Context, p *models.QuestionPaper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.clock = m.clock.Add(time.Second)
	p.CreatedAt, p.UpdatedAt = m.clock, m.clock
	m.papers = append(m.papers, *p)
	return nil
}

func (m *memPaperStore) DeletePaper(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.papers {
		if p.ID == id {
			m.papers = append(m.papers[:i], m.papers[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrPaperNotFound
}

// memUserStore is an in-memory UserStore
type memUserStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]models.User
	lookupErr error
	lookups   int
	lookupIDs [][]uuid.UUID
	updateErr error
}

func newMemUserStore(users ...models.User) *memUserStore {
	m := &memUserStore{users: map[uuid.UUID]models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	m.lookupIDs = append(m.lookupIDs, ids)
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	out := map[uuid.UUID]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *memUserStore) UpdateProfile(_ context.Context, id uuid.UUID, update repositories.UserProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.University != nil {
		u.University = update.University
	}
	if update.Avatar != nil {
		u.Avatar = update.Avatar
	}
	m.users[id] = u
	return &u, nil
}

// fakeFileStore records uploads and deletions
type fakeFileStore struct {
	mu        sync.Mutex
	uploads   []filestorage.Upload
	contents  [][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeFileStore) Upload(_ context.Context, content io.Reader, upload filestorage.Upload) (*filestorage.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, upload)
	f.contents = append(f.contents, data)
	url := "https://files.test/" + upload.Folder + "/" + uuid.NewString() + upload.Extension
	return &filestorage.StoredFile{URL: url, PublicID: url, MimeType: upload.MimeType}, nil
}

func (f *fakeFileStore) Delete(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return f.deleteErr
}

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

func newFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
