package trace

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

type spanKey struct{}

// Span 은 콘솔로 들어온 요청 하나의 추적 정보다.
// 인바운드 로그는 span 0 이고, 블로그 API 호출마다 1,2,3,... 로 증가한다.
// 세션 미들웨어가 요청이 속한 콘솔 세션 ID 를 붙인다.
type Span struct {
	RequestID string

	seq     atomic.Int64
	session atomic.Pointer[string]
}

// NewID는 대시 없는 UUIDv4 문자열을 트레이싱 ID로 생성한다.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Start 는 requestID 로 Span 을 만들어 컨텍스트에 넣는다. requestID 가 비어 있으면 새로 발급한다.
func Start(ctx context.Context, requestID string) (context.Context, *Span) {
	if requestID == "" {
		requestID = NewID()
	}
	s := &Span{RequestID: requestID}
	return context.WithValue(ctx, spanKey{}, s), s
}

func FromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

func (s *Span) BindSession(id string) {
	s.session.Store(&id)
}

func (s *Span) SessionID() string {
	if s == nil {
		return ""
	}
	if p := s.session.Load(); p != nil {
		return *p
	}
	return ""
}

// Current 는 마지막으로 발급된 span 번호를 돌려준다. (증가시키지 않는다.)
func (s *Span) Current() string {
	if s == nil {
		return "0"
	}
	return strconv.FormatInt(s.seq.Load(), 10)
}

// Next 는 아웃바운드 호출 하나에 쓸 span 번호를 발급한다.
func (s *Span) Next() string {
	return strconv.FormatInt(s.seq.Add(1), 10)
}

// Outbound 는 아웃바운드 요청 헤더에 실을 (requestID, spanID) 를 돌려준다.
// 미들웨어 밖에서 호출되면 새 requestID 와 span 1 을 쓴다.
func Outbound(ctx context.Context) (string, string) {
	s := FromContext(ctx)
	if s == nil {
		return NewID(), "1"
	}
	return s.RequestID, s.Next()
}
