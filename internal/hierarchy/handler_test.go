package hierarchy_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/aburizalp/ministry-management/internal/auth"
	"github.com/aburizalp/ministry-management/internal/hierarchy"
	"github.com/aburizalp/ministry-management/internal/scope"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func requestAs(method, target, body string, sc *scope.Context) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := auth.ContextWithUser(context.Background(), &auth.User{ID: 1, Email: "leader@ministry.local", Scope: sc})
	return req.WithContext(ctx)
}

var _ = Describe("Hierarchy Handler", func() {
	var (
		mockRepo *MockRepository
		handler  *hierarchy.Handler
	)

	regionScope := &scope.Context{
		UserID: 1,
		Level:  scope.LevelRegion,
		Region: &scope.RegionRef{ID: 1, Name: "Jabodetabek"},
	}
	superadminScope := &scope.Context{UserID: 1, Level: scope.LevelSuperadmin}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := hierarchy.NewService(mockRepo, logger)
		handler = hierarchy.NewHandler(service)
	})

	Describe("mutations from a scoped caller", func() {
		It("should refuse region creation with 403", func() {
			req := requestAs(http.MethodPost, "/regions", `{"name":"Sulawesi"}`, regionScope)
			w := httptest.NewRecorder()

			handler.CreateRegion(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.regions).To(BeEmpty())
		})

		It("should refuse university creation with 403", func() {
			req := requestAs(http.MethodPost, "/universities", `{"name":"UI","region_id":1}`, regionScope)
			w := httptest.NewRecorder()

			handler.CreateUniversity(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.universities).To(BeEmpty())
		})

		It("should refuse region deletion with 403", func() {
			req := requestAs(http.MethodDelete, "/regions/1", "", regionScope)
			w := httptest.NewRecorder()

			handler.DeleteRegion(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should refuse a caller with no scope assignment with 401", func() {
			req := requestAs(http.MethodPost, "/regions", `{"name":"Sulawesi"}`, nil)
			w := httptest.NewRecorder()

			handler.CreateRegion(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(mockRepo.regions).To(BeEmpty())
		})
	})

	Describe("mutations from an unrestricted caller", func() {
		It("should create a region", func() {
			req := requestAs(http.MethodPost, "/regions", `{"name":"Sulawesi"}`, superadminScope)
			w := httptest.NewRecorder()

			handler.CreateRegion(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var envelope struct {
				Success bool              `json:"success"`
				Data    *hierarchy.Region `json:"data"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Success).To(BeTrue())
			Expect(envelope.Data.Name).To(Equal("Sulawesi"))
		})
	})

	Describe("reads", func() {
		It("should stay open to scoped callers", func() {
			req := requestAs(http.MethodGet, "/regions", "", regionScope)
			w := httptest.NewRecorder()

			handler.ListRegions(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})
})
