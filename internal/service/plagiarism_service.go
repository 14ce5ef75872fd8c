package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-plagiarism-api/internal/dto"
	"github.com/noah-isme/gema-plagiarism-api/internal/models"
	"github.com/noah-isme/gema-plagiarism-api/internal/observability"
	"github.com/noah-isme/gema-plagiarism-api/internal/repository"
	"github.com/noah-isme/gema-plagiarism-api/internal/similarity"
)

const (
	// ActivityPlagiarismChecked is the audit action written after every completed check.
	ActivityPlagiarismChecked = "plagiarism.checked"

	noPeersMessage = "no submitted work to compare against yet"
)

// PlagiarismConfig tunes the similarity check.
type PlagiarismConfig struct {
	Threshold         float64
	MinSentenceLength int
	Workers           int
	ReportCacheTTL    time.Duration
	EventsChannel     string
}

// PlagiarismService compares a submission with the other submitted work for
// its assignment and serves the stored reports.
type PlagiarismService interface {
	Check(ctx context.Context, submissionID, assignmentID uint, actor ActivityActor) (dto.PlagiarismCheckResponse, error)
	GetReports(ctx context.Context, submissionID uint) ([]dto.PlagiarismReportResponse, error)
}

type plagiarismService struct {
	submissions  repository.SubmissionRepository
	reports      repository.PlagiarismReportRepository
	activity     ActivityRecorder
	cache        *redis.Client
	cacheTTL     time.Duration
	nats         *nats.Conn
	natsSubject  string
	redisChannel string
	matcher      similarity.Matcher
	workers      int
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

type plagiarismCheckedEvent struct {
	Event             string    `json:"event"`
	SubmissionID      uint      `json:"submission_id"`
	AssignmentID      uint      `json:"assignment_id"`
	OverallSimilarity float64   `json:"overall_similarity"`
	Severity          string    `json:"severity"`
	Reports           int       `json:"reports"`
	ComparedCount     int       `json:"compared_count"`
	CheckedAt         time.Time `json:"checked_at"`
}

// NewPlagiarismService wires the check orchestrator. cache, natsConn and
// activity are optional.
func NewPlagiarismService(
	submissions repository.SubmissionRepository,
	reports repository.PlagiarismReportRepository,
	activity ActivityRecorder,
	cache *redis.Client,
	natsConn *nats.Conn,
	cfg PlagiarismConfig,
	logger zerolog.Logger,
) PlagiarismService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	ttl := cfg.ReportCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	channel := ""
	subject := ""
	if cfg.EventsChannel != "" {
		channel = cfg.EventsChannel + ":plagiarism"
		subject = strings.ReplaceAll(cfg.EventsChannel, ":", ".") + ".plagiarism"
	}

	return &plagiarismService{
		submissions:  submissions,
		reports:      reports,
		activity:     activity,
		cache:        cache,
		cacheTTL:     ttl,
		nats:         natsConn,
		natsSubject:  subject,
		redisChannel: channel,
		matcher:      similarity.NewMatcher(cfg.Threshold, cfg.MinSentenceLength),
		workers:      workers,
		logger:       logger.With().Str("component", "plagiarism_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/gema-plagiarism-api/internal/service/plagiarism"),
		now:          time.Now,
	}
}

func (s *plagiarismService) Check(ctx context.Context, submissionID, assignmentID uint, actor ActivityActor) (dto.PlagiarismCheckResponse, error) {
	started := time.Now()
	defer func() {
		observability.PlagiarismCheckDuration().Observe(time.Since(started).Seconds())
	}()

	spanCtx, span := s.tracer.Start(ctx, "plagiarism.check", trace.WithAttributes(
		attribute.Int64("plagiarism.submission_id", int64(submissionID)),
	))
	defer span.End()

	logger := s.logger.With().Uint("submission_id", submissionID).Logger()

	submission, err := s.submissions.GetByID(spanCtx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.PlagiarismChecks().WithLabelValues("not_found").Inc()
			return dto.PlagiarismCheckResponse{}, ErrSubmissionNotFound
		}
		s.checkFailed(span, err)
		return dto.PlagiarismCheckResponse{}, fmt.Errorf("load submission %d: %w", submissionID, err)
	}

	if !submission.HasContent() {
		observability.PlagiarismChecks().WithLabelValues("not_found").Inc()
		return dto.PlagiarismCheckResponse{}, ErrSubmissionNotFound
	}

	if assignmentID == 0 {
		assignmentID = submission.AssignmentID
	}
	span.SetAttributes(attribute.Int64("plagiarism.assignment_id", int64(assignmentID)))

	peers, err := s.submissions.ListSubmittedPeers(spanCtx, assignmentID, submission.ID)
	if err != nil {
		s.checkFailed(span, err)
		return dto.PlagiarismCheckResponse{}, fmt.Errorf("list peers for assignment %d: %w", assignmentID, err)
	}

	response := dto.PlagiarismCheckResponse{
		SubmissionID:      submission.ID,
		AssignmentID:      assignmentID,
		OverallSimilarity: 0,
		Severity:          similarity.SeverityNone,
		Reports:           []dto.PlagiarismReportResponse{},
		MatchedSegments:   []similarity.MatchedSegment{},
		ComparedCount:     len(peers),
		CheckedAt:         s.now().UTC(),
	}

	if len(peers) == 0 {
		response.Message = noPeersMessage
		observability.PlagiarismChecks().WithLabelValues("no_peers").Inc()
		logger.Info().Uint("assignment_id", assignmentID).Msg("no peers to compare")
		return response, nil
	}

	matches, err := s.compare(spanCtx, submission.Content, peers)
	if err != nil {
		s.checkFailed(span, err)
		return dto.PlagiarismCheckResponse{}, err
	}

	contentLength := similarity.ContentLength(submission.Content)
	collected := make([]similarity.MatchedSegment, 0)
	for i, peer := range peers {
		segments := matches[i]
		if len(segments) == 0 {
			continue
		}

		report := models.PlagiarismReport{
			SubmissionID:         submission.ID,
			ComparedSubmissionID: peer.ID,
			// Overlaps within one peer are counted twice; only the 100 cap applies.
			SimilarityScore:      similarity.PairScore(segments, contentLength),
			MatchedContent:       segments,
		}

		if err := s.reports.Create(spanCtx, &report); err != nil {
			span.RecordError(err)
			observability.PlagiarismPersistFailures().Inc()
			logger.Warn().Err(err).Uint("compared_submission_id", peer.ID).Msg("failed to persist plagiarism report")
		} else {
			observability.PlagiarismReportsPersisted().Inc()
		}

		if report.CreatedAt.IsZero() {
			report.CreatedAt = response.CheckedAt
		}

		response.Reports = append(response.Reports, dto.NewPlagiarismReportResponse(report))
		collected = append(collected, segments...)
	}

	sort.SliceStable(response.Reports, func(i, j int) bool {
		return response.Reports[i].SimilarityScore > response.Reports[j].SimilarityScore
	})

	response.MatchedSegments = similarity.Merge(collected)
	response.OverallSimilarity = similarity.Coverage(response.MatchedSegments, contentLength)
	response.Severity = similarity.Severity(response.OverallSimilarity)
	if len(response.Reports) == 0 {
		response.Message = fmt.Sprintf("no matching passages found across %d submissions", len(peers))
	}

	span.SetAttributes(
		attribute.Int("plagiarism.compared", len(peers)),
		attribute.Int("plagiarism.reports", len(response.Reports)),
		attribute.Float64("plagiarism.overall_similarity", response.OverallSimilarity),
	)
	observability.PlagiarismChecks().WithLabelValues("compared").Inc()

	s.invalidateReports(spanCtx, submission.ID)
	if err := s.publish(spanCtx, response); err != nil {
		logger.Warn().Err(err).Msg("failed to publish plagiarism event")
	}
	s.recordActivity(spanCtx, actor, response)

	logger.Info().
		Uint("assignment_id", assignmentID).
		Int("compared", len(peers)).
		Int("reports", len(response.Reports)).
		Float64("overall_similarity", response.OverallSimilarity).
		Msg("plagiarism check completed")

	return response, nil
}

// compare runs the matcher against every peer on a bounded pool. The result
// slice is indexed like peers so callers see store order.
func (s *plagiarismService) compare(ctx context.Context, content string, peers []models.Submission) ([][]similarity.MatchedSegment, error) {
	results := make([][]similarity.MatchedSegment, len(peers))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i := range peers {
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = s.matcher.FindMatches(content, peers[i].Content, peers[i].ID)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("compare peers: %w", err)
	}

	return results, nil
}

func (s *plagiarismService) GetReports(ctx context.Context, submissionID uint) ([]dto.PlagiarismReportResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "plagiarism.reports", trace.WithAttributes(
		attribute.Int64("plagiarism.submission_id", int64(submissionID)),
	))
	defer span.End()

	cacheKey := reportsCacheKey(submissionID)
	if s.cache != nil {
		if cached, err := s.cache.Get(spanCtx, cacheKey).Result(); err == nil {
			var responses []dto.PlagiarismReportResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				observability.PlagiarismReportCache().WithLabelValues("hit").Inc()
				return responses, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read plagiarism report cache")
		}
		observability.PlagiarismReportCache().WithLabelValues("miss").Inc()
	}

	reports, err := s.reports.ListBySubmission(spanCtx, submissionID)
	if err != nil {
		markSpanError(span, err)
		return nil, fmt.Errorf("list reports for submission %d: %w", submissionID, err)
	}

	responses := dto.NewPlagiarismReportResponseSlice(reports)

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(spanCtx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store plagiarism report cache")
			}
		}
	}

	return responses, nil
}

func (s *plagiarismService) invalidateReports(ctx context.Context, submissionID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, reportsCacheKey(submissionID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("failed to invalidate plagiarism report cache")
	}
}

func (s *plagiarismService) publish(ctx context.Context, result dto.PlagiarismCheckResponse) error {
	if (s.cache == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(plagiarismCheckedEvent{
		Event:             ActivityPlagiarismChecked,
		SubmissionID:      result.SubmissionID,
		AssignmentID:      result.AssignmentID,
		OverallSimilarity: result.OverallSimilarity,
		Severity:          result.Severity,
		Reports:           len(result.Reports),
		ComparedCount:     result.ComparedCount,
		CheckedAt:         result.CheckedAt,
	})
	if err != nil {
		return err
	}

	if s.cache != nil && s.redisChannel != "" {
		if err := s.cache.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *plagiarismService) recordActivity(ctx context.Context, actor ActivityActor, result dto.PlagiarismCheckResponse) {
	if s.activity == nil {
		return
	}

	submissionID := result.SubmissionID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     ActivityPlagiarismChecked,
		EntityType: "submission",
		EntityID:   &submissionID,
		Metadata: map[string]interface{}{
			"assignment_id":      result.AssignmentID,
			"compared_count":     result.ComparedCount,
			"reports":            len(result.Reports),
			"overall_similarity": result.OverallSimilarity,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("failed to record plagiarism activity")
	}
}

func (s *plagiarismService) checkFailed(span trace.Span, err error) {
	observability.PlagiarismChecks().WithLabelValues("error").Inc()
	markSpanError(span, err)
}

func markSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func reportsCacheKey(submissionID uint) string {
	return fmt.Sprintf("plagiarism:reports:%d", submissionID)
}
