package service

import (
	"strconv"

	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// Validate checks a submission before anything is written. Inputs are
// expected to be normalized already. A nil vocabulary skips the value checks.
func Validate(draft domain.ProjectDraft, founders []domain.FounderDraft, vocab *domain.Vocabulary) error {
	if draft.Name == "" {
		return domain.NewValidationError(domain.MsgMissingProjectFields, "name")
	}
	if draft.Province == "" {
		return domain.NewValidationError(domain.MsgMissingProjectFields, "province")
	}
	if len(founders) == 0 {
		return domain.NewValidationError(domain.MsgMissingFounderFields, "founders")
	}
	for i, f := range founders {
		if f.Name == "" {
			return domain.NewValidationError(domain.MsgMissingFounderFields, founderField(i, "name"))
		}
	}

	if vocab == nil {
		return nil
	}
	if !vocab.HasProvince(draft.Province) {
		return domain.NewValidationError(domain.MsgInvalidProjectFields, "province")
	}
	if draft.Industry != "" && !vocab.HasIndustry(draft.Industry) {
		return domain.NewValidationError(domain.MsgInvalidProjectFields, "industry")
	}
	for i, f := range founders {
		if f.Province != "" && !vocab.HasProvince(f.Province) {
			return domain.NewValidationError(domain.MsgInvalidFounderFields, founderField(i, "province"))
		}
	}
	return nil
}

func founderField(i int, name string) string {
	return "founders[" + strconv.Itoa(i) + "]." + name
}
