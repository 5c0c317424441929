package services

import (
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/pathlight-learn/pathlight_api/dto"
	"github.com/pathlight-learn/pathlight_api/shared"
	log "github.com/sirupsen/logrus"
)

// LearnerService maps a caller-supplied identifier to a confirmed learner
// row, minting an identifier when the caller has none.
type LearnerService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const LEARNER_SVC = "learner_svc"

func (svc LearnerService) Id() string {
	return LEARNER_SVC
}

func (svc *LearnerService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LearnerService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// Resolve returns a confirmed learner id for candidateID. A well-formed but
// unknown id is accepted and persisted, so calling twice with the same id is
// a no-op on the second call. A present-but-malformed id is rejected before
// any storage access.
func (svc *LearnerService) Resolve(candidateID string) (*dto.ResolveLearnerResponse, error) {
	learnerID := candidateID
	if learnerID == "" {
		learnerID = uuid.New().String()
	} else {
		parsed, err := uuid.Parse(learnerID)
		if err != nil {
			return nil, shared.NewBadRequestError(
				fmt.Errorf("invalid learner identifier: %w", err), "Invalid learner identifier")
		}
		learnerID = parsed.String()
	}

	_, created, err := svc.sqlSvc.GetOrCreateLearner(learnerID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	if created {
		log.WithField("generated", candidateID == "").Info("Learner created")
	}

	return &dto.ResolveLearnerResponse{
		LearnerID: learnerID,
		IsNew:     created,
	}, nil
}
