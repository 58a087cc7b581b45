//go:build unit

package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"resource-finder/internal/domain/currency"
	"resource-finder/internal/domain/learning"
	"resource-finder/internal/infra/cache"
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/pkg/errs"
	"resource-finder/internal/usecase"
	"resource-finder/tests/common/builder"
	usecasemock "resource-finder/tests/mock/usecase"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ResourceFinderTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockUpstream *usecasemock.MockChatCompleter
	mockGeo      *usecasemock.MockGeoLocator
	mockCache    *usecasemock.MockListingCache
	normalizer   *currency.Normalizer
	finder       usecase.ResourceFinder
	ctx          context.Context
}

func (s *ResourceFinderTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUpstream = usecasemock.NewMockChatCompleter(s.mockCtrl)
	s.mockGeo = usecasemock.NewMockGeoLocator(s.mockCtrl)
	s.mockCache = usecasemock.NewMockListingCache(s.mockCtrl)
	s.normalizer = currency.NewNormalizer(currency.DefaultTable())
	s.finder = usecase.NewResourceFinder(s.mockUpstream, s.mockGeo, s.mockCache, s.normalizer, discardLogger())
	s.ctx = context.Background()
}

func (s *ResourceFinderTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestResourceFinderSuite(t *testing.T) {
	suite.Run(t, new(ResourceFinderTestSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ================================================================================
// TestFind
// ================================================================================

func (s *ResourceFinderTestSuite) TestFind() {
	reply := builder.NewResourceSetBuilder().BuildReply()

	s.Run("success: cache miss calls upstream once and stores the listing", func() {
		var stored *usecase.ResourceListing
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockGeo.EXPECT().CountryCode("203.0.113.7").Return("US", true).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p usecase.Prompt) (string, error) {
				s.Contains(p.User, "Go")
				s.Contains(p.User, "USD")
				return reply, nil
			}).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "go", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, l *usecase.ResourceListing) error {
				stored = l
				return nil
			}).Times(1)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go", ClientIP: "203.0.113.7"})
		s.Require().NoError(err)

		s.Equal(currency.Info{Code: "USD", Symbol: "$"}, listing.Currency)
		s.Same(listing, stored)
		paid := listing.Resources.Items(learning.LevelBeginner, learning.CategoryPaid)
		s.Require().Len(paid, 1)
		s.Equal(learning.Text("$19.99"), paid[0].Price)
	})

	s.Run("success: subject is trimmed and lower-cased for the cache key", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "machine learning").Return(nil, false, nil).Times(1)
		s.mockGeo.EXPECT().CountryCode(gomock.Any()).Return("", false).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p usecase.Prompt) (string, error) {
				s.Contains(p.User, "Machine Learning")
				return reply, nil
			}).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "machine learning", gomock.Any()).Return(nil).Times(1)

		_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "  Machine Learning ", ClientIP: "192.0.2.1"})
		s.NoError(err)
	})

	s.Run("success: cache hit skips upstream", func() {
		cached := builder.NewResourceSetBuilder().BuildListing()
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(cached, true, nil).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Times(0)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "GO"})
		s.Require().NoError(err)
		s.Same(cached, listing)
	})

	s.Run("success: fenced reply is cleaned before parsing", func() {
		fenced := builder.NewResourceSetBuilder().BuildFencedReply()
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(fenced, nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "go", gomock.Any()).Return(nil).Times(1)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
		s.Require().NoError(err)
		s.Equal(6, listing.Resources.Count())
	})

	s.Run("success: stray keys and extra fields in the reply are kept", func() {
		content := `{
			"beginner": {
				"paid": [{"title": "Rust course", "price": "$10.00", "platform": "Coursera", "rating": 4.7}],
				"tips": "Read the book first"
			},
			"note": "Prices are approximate"
		}`
		s.mockCache.EXPECT().Get(gomock.Any(), "rust").Return(nil, false, nil).Times(1)
		s.mockGeo.EXPECT().CountryCode("203.0.113.7").Return("IN", true).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(content, nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "rust", gomock.Any()).Return(nil).Times(1)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Rust", ClientIP: "203.0.113.7"})
		s.Require().NoError(err)

		item := listing.Resources.Items(learning.LevelBeginner, learning.CategoryPaid)[0]
		s.Equal(learning.Text("₹831.20"), item.Price)
		s.JSONEq(`"Coursera"`, string(item.Extra["platform"]))
		s.JSONEq(`4.7`, string(item.Extra["rating"]))
		s.JSONEq(`"Read the book first"`, string(listing.Resources.Levels[learning.LevelBeginner].Extra["tips"]))
		s.JSONEq(`"Prices are approximate"`, string(listing.Resources.Extra["note"]))
	})

	s.Run("success: client country selects currency and converts paid prices", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockGeo.EXPECT().CountryCode("203.0.113.7").Return("IN", true).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(reply, nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "go", gomock.Any()).Return(nil).Times(1)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go", ClientIP: "203.0.113.7"})
		s.Require().NoError(err)

		s.Equal(currency.Info{Code: "INR", Symbol: "₹"}, listing.Currency)
		for _, level := range learning.Levels {
			s.Equal(learning.Text("₹1661.57"), listing.Resources.Items(level, learning.CategoryPaid)[0].Price, level)
			s.Equal(learning.Text(currency.FreeMarker), listing.Resources.Items(level, learning.CategoryFree)[0].Price, level)
		}
	})

	s.Run("success: cache read failure is treated as a miss", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, errors.New("connection refused")).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(reply, nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "go", gomock.Any()).Return(nil).Times(1)

		_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
		s.NoError(err)
	})

	s.Run("success: cache write failure still returns the listing", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(reply, nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), "go", gomock.Any()).Return(errors.New("OOM")).Times(1)

		listing, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
		s.Require().NoError(err)
		s.NotNil(listing)
	})

	s.Run("error: blank subject is rejected before any lookup", func() {
		for _, subject := range []string{"", "   ", "\t\n"} {
			s.mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Times(0)

			_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: subject})
			s.ErrorIs(err, usecase.ErrSubjectRequired)
		}
	})

	s.Run("error: upstream failure is classified and keeps the status", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
			Return("", &usecase.UpstreamError{StatusCode: 503, Body: "overloaded"}).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
		s.Require().Error(err)
		s.True(errs.Is(err, usecase.ErrUpstreamFailed))
		s.False(errs.Is(err, usecase.ErrParseFailed))

		var upstreamErr *usecase.UpstreamError
		s.Require().True(errs.As(err, &upstreamErr))
		s.Equal(503, upstreamErr.StatusCode)
	})

	s.Run("error: malformed reply is classified with the cleaned content", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
		s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
			Return("```json\n{\"beginner\": \n```", nil).Times(1)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
		s.Require().Error(err)
		s.True(errs.Is(err, usecase.ErrParseFailed))

		var parseErr *usecase.ParseError
		s.Require().True(errs.As(err, &parseErr))
		s.Equal(`{"beginner":`, parseErr.Content)
	})

	s.Run("error: non-object reply is a parse failure", func() {
		for _, content := range []string{"null", "[]", `"text"`, "Sorry, I can't help with that."} {
			s.mockCache.EXPECT().Get(gomock.Any(), "go").Return(nil, false, nil).Times(1)
			s.mockUpstream.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(content, nil).Times(1)

			_, err := s.finder.Find(s.ctx, usecase.FindRequest{Subject: "Go"})
			s.True(errs.Is(err, usecase.ErrParseFailed), content)
		}
	})
}

func TestResourceFinderWithMemoryCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	upstream := usecasemock.NewMockChatCompleter(ctrl)
	store := cache.NewMemoryStore(time.Hour, 10, clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	finder := usecase.NewResourceFinder(upstream, nil, store,
		currency.NewNormalizer(currency.DefaultTable()), discardLogger())

	upstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(builder.NewResourceSetBuilder().BuildFencedReply(), nil).Times(1)

	first, err := finder.Find(context.Background(), usecase.FindRequest{Subject: "Rust"})
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := finder.Find(context.Background(), usecase.FindRequest{Subject: " rust "})
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first != second {
		t.Fatalf("second request was not served from cache")
	}
}

func TestResourceFinderCoalescesConcurrentMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	upstream := usecasemock.NewMockChatCompleter(ctrl)
	store := cache.NewMemoryStore(time.Hour, 10, clock.NewRealClock())
	finder := usecase.NewResourceFinder(upstream, nil, store,
		currency.NewNormalizer(currency.DefaultTable()), discardLogger())

	release := make(chan struct{})
	upstream.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, usecase.Prompt) (string, error) {
			<-release
			return builder.NewResourceSetBuilder().BuildReply(), nil
		}).Times(1)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = finder.Find(context.Background(), usecase.FindRequest{Subject: "Kotlin"})
		}()
	}
	// give every caller a chance to reach the shared call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
}
