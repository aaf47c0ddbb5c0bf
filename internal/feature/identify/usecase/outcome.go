package usecase

import (
	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
)

// OutcomeKind は識別処理の終端状態の種類です。
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeNoMatches OutcomeKind = "no_matches"
	OutcomeFailure   OutcomeKind = "failure"
)

// Outcome は識別処理1回分の結果です。
// KindがOutcomeSuccessのときはResult、OutcomeFailureのときはFailureが設定されます。
type Outcome struct {
	Kind        OutcomeKind
	RequestID   string
	WantDetails bool
	Result      entity.ShapedResult
	Failure     *Failure
}

// Failure は利用者に1つのメッセージとして提示される失敗です。
type Failure struct {
	Category domain.Category
	Message  string
	Filename string // 画像単位の失敗の場合のみ設定
	Err      error
}

func failed(requestID string, err error) Outcome {
	f := &Failure{
		Category: domain.Categorize(err),
		Message:  domain.UserMessage(err),
		Err:      err,
	}
	if ne := asNormalizationError(err); ne != nil {
		f.Filename = ne.Filename
	}
	return Outcome{Kind: OutcomeFailure, RequestID: requestID, Failure: f}
}
