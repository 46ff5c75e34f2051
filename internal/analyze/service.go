package analyze

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm"
	"github.com/joseph-ayodele/portfolio-grader/internal/upload"
)

// Upload is one screenshot as received from the client.
type Upload struct {
	Body     io.Reader
	Filename string
	MimeType string // declared by the client, passed through untouched
}

// Result is the extraction outcome for one upload.
type Result struct {
	Record  llm.InvestmentRecord
	Raw     []byte // normalized JSON as returned by the extractor
	TempKey string // staged file key; already released when Analyze returns
}

// Service coordinates staging, extraction and cleanup for a single screenshot.
// It keeps no per-request state, so one instance serves concurrent requests.
type Service struct {
	stager    *upload.Stager
	extractor llm.FieldExtractor
	logger    *zap.Logger
}

func NewService(stager *upload.Stager, extractor llm.FieldExtractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stager: stager, extractor: extractor, logger: logger}
}

// Analyze stages the upload, reads it back, asks the extractor for a record, and
// removes the staged copy whether or not extraction succeeded.
func (s *Service) Analyze(ctx context.Context, up Upload) (Result, error) {
	log := common.LoggerFromContext(ctx, s.logger)
	start := time.Now()

	var res Result
	err := s.stager.WithTempFile(ctx, up.Body, up.Filename, up.MimeType, func(tf *upload.TempFile) error {
		res.TempKey = tf.Key
		log.Info("analyze.stage.ok",
			zap.String("key", tf.Key),
			zap.String("filename", tf.OriginalName),
			zap.String("mime_type", tf.MimeType),
			zap.Int64("size", tf.Size),
		)

		data, err := tf.ReadAll()
		if err != nil {
			return err
		}

		rec, raw, err := s.extractor.ExtractFields(ctx, llm.ExtractRequest{
			ImageData:    data,
			MimeType:     tf.MimeType,
			FilenameHint: tf.OriginalName,
			FilePath:     tf.Path,
		})
		if err != nil {
			return common.NewAppError(common.CodeExtract, "extract fields", err)
		}
		res.Record = rec
		res.Raw = raw
		return nil
	})
	if err != nil {
		log.Error("analyze.failed",
			zap.String("key", res.TempKey),
			zap.String("code", common.ErrorCode(err)),
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return Result{TempKey: res.TempKey}, err
	}

	log.Info("analyze.ok",
		zap.String("key", res.TempKey),
		zap.String("grade", res.Record.Grade),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	log.Debug("analyze.record", zap.String("key", res.TempKey), zap.ByteString("raw", res.Raw))
	return res, nil
}
