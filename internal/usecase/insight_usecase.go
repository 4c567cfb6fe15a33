package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rautpranav13/IBMaarogyam/internal/domain"
	"github.com/rautpranav13/IBMaarogyam/pkg/e"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
)

// InsightUseCase turns prescription images into "insights" and "drug schedule" completions.
type InsightUseCase struct {
	fetcher   ImageFetcher
	inference InferenceInfra
	single    *domain.PromptSet
	batch     *domain.PromptSet
	logger    logger.Logger
}

func NewInsightUC(
	fetcher ImageFetcher,
	inference InferenceInfra,
	single *domain.PromptSet,
	batch *domain.PromptSet,
	logger logger.Logger,
) *InsightUseCase {
	return &InsightUseCase{
		fetcher:   fetcher,
		inference: inference,
		single:    single,
		batch:     batch,
		logger:    logger,
	}
}

// ProcessImage fetches one image and runs both queries of the single prompt set against it.
func (u *InsightUseCase) ProcessImage(ctx context.Context, req *ProcessImageReq) (*ProcessImageRes, error) {
	const op = "InsightUseCase.ProcessImage"

	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, e.Wrap(op, e.ErrInvalidImageURL)
	}

	if err := u.checkCredentials(); err != nil {
		return nil, e.Wrap(op, err)
	}

	img, err := u.fetcher.Fetch(ctx, req.ImageURL)
	if err != nil {
		return nil, e.Wrap(op, budgetErr(ctx, err))
	}

	insight, err := u.analyze(ctx, u.single, img)
	if err != nil {
		return nil, e.Wrap(op, budgetErr(ctx, err))
	}

	return NewProcessImageRes(*insight), nil
}

// ProcessImages handles the URLs one after another. A failed image becomes an item
// with Err set and the loop moves on to the next one. Once ctx is done every
// remaining image is reported as e.ErrDeadlineExceeded without being fetched.
func (u *InsightUseCase) ProcessImages(ctx context.Context, req *ProcessImagesReq) (*ProcessImagesRes, error) {
	const op = "InsightUseCase.ProcessImages"

	if len(req.ImageURLs) == 0 {
		return nil, e.Wrap(op, e.ErrInvalidImageURLs)
	}

	if err := u.checkCredentials(); err != nil {
		return nil, e.Wrap(op, err)
	}

	items := make([]ImageResult, 0, len(req.ImageURLs))
	for i, url := range req.ImageURLs {
		item := ImageResult{Index: i + 1}

		if ctx.Err() != nil {
			item.Err = e.Wrap("not started", e.ErrDeadlineExceeded)
			items = append(items, item)
			continue
		}

		img, err := u.fetcher.Fetch(ctx, url)
		if err != nil {
			u.logger.Warnf("image %d: fetch failed: %v", item.Index, err)
			item.Err = budgetErr(ctx, err)
			items = append(items, item)
			continue
		}

		insight, err := u.analyze(ctx, u.batch, img)
		if err != nil {
			if errors.Is(err, e.ErrMissingCredentials) {
				return nil, e.Wrap(op, err)
			}
			u.logger.Warnf("image %d: inference failed: %v", item.Index, err)
			item.Err = budgetErr(ctx, err)
			items = append(items, item)
			continue
		}

		item.Insight = insight
		items = append(items, item)
	}

	if skipped := countSkipped(items); skipped > 0 {
		u.logger.Warnf("request budget exhausted: %d of %d images not processed", skipped, len(items))
	}

	return NewProcessImagesRes(items), nil
}

// analyze issues the insights query and then the drug schedule query, sequentially.
func (u *InsightUseCase) analyze(ctx context.Context, set *domain.PromptSet, img *domain.EncodedImage) (*domain.Insight, error) {
	insights, err := u.complete(ctx, set, domain.QueryInsights, img)
	if err != nil {
		return nil, err
	}

	schedule, err := u.complete(ctx, set, domain.QueryDrugSchedule, img)
	if err != nil {
		return nil, err
	}

	return domain.NewInsight(insights, schedule), nil
}

func (u *InsightUseCase) complete(ctx context.Context, set *domain.PromptSet, key string, img *domain.EncodedImage) (string, error) {
	query := domain.NewInferenceQuery(set.Prompt(key), set.MaxTokens, *img)

	text, err := u.inference.Complete(ctx, query)
	if err != nil {
		return "", e.Wrap(key, err)
	}

	u.logger.Debugf("%s: %d chars from model", key, len(text))
	return set.Sanitize(text), nil
}

func (u *InsightUseCase) checkCredentials() error {
	if c, ok := u.inference.(CredentialChecker); ok {
		return c.CheckCredentials()
	}
	return nil
}

// budgetErr reports a failure caused by the request running out of time as
// e.ErrDeadlineExceeded; the fetch or inference error is then only a symptom.
func budgetErr(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	return e.Wrap(err.Error(), e.ErrDeadlineExceeded)
}

func countSkipped(items []ImageResult) int {
	n := 0
	for _, it := range items {
		if errors.Is(it.Err, e.ErrDeadlineExceeded) {
			n++
		}
	}
	return n
}
