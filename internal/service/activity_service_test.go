package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-plagiarism-api/internal/models"
)

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	err     error
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) snapshot() []models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActivityLog(nil), m.entries...)
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Teacher",
		Action:     " Plagiarism.Checked ",
		EntityType: "Submission",
		EntityID:   ptrUint(5),
		Metadata: map[string]interface{}{
			"student_email": "student@example.com",
			"content":       "the full essay",
			"reports":       2,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["student_email"])
	require.Equal(t, "***", entry.Metadata["content"])
	require.Equal(t, 2, entry.Metadata["reports"])
	require.Equal(t, "teacher", entry.ActorRole)
	require.Equal(t, "plagiarism.checked", entry.Action)
	require.Equal(t, "submission", entry.EntityType)
	require.Len(t, repo.snapshot(), 1)
}

func TestActivityServiceRecordValidatesAndDefaultsRole(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "submission"})
	require.Error(t, err)

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "submission.graded"})
	require.Error(t, err)

	entry, err := svc.Record(context.Background(), ActivityEntry{Action: "submission.graded", EntityType: "submission"})
	require.NoError(t, err)
	require.Equal(t, "system", entry.ActorRole)
	require.NotNil(t, entry.Metadata)
}

func TestActivityServiceRecordSurfacesStoreErrors(t *testing.T) {
	repo := &memoryActivityRepo{err: errors.New("db down")}
	svc := NewActivityService(repo, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{Action: "x.y", EntityType: "submission"})
	require.EqualError(t, err, "db down")
}

func ptrUint(v uint) *uint {
	return &v
}
