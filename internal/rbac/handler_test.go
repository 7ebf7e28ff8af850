package rbac_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/aburizalp/ministry-management/internal/auth"
	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
	"github.com/aburizalp/ministry-management/internal/rbac"
	"github.com/aburizalp/ministry-management/internal/scope"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func requestAs(method, target, body string, sc *scope.Context) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := auth.ContextWithUser(context.Background(), &auth.User{ID: 1, Email: "leader@ministry.local", Scope: sc})
	return req.WithContext(ctx)
}

var _ = Describe("RBAC Handler", func() {
	var (
		mockRepo *MockRepository
		handler  *rbac.Handler
	)

	seedRole := func(name string) *rbacDatamodel.Role {
		role := &rbacDatamodel.Role{Name: name, Level: "region", IsActive: true}
		Expect(mockRepo.CreateRole(context.Background(), role)).To(Succeed())
		return role
	}

	seedPermission := func(name string) *rbacDatamodel.Permission {
		permission := &rbacDatamodel.Permission{Name: name, Resource: "member", Action: "write", Scope: "regional", IsActive: true}
		Expect(mockRepo.CreatePermission(context.Background(), permission)).To(Succeed())
		return permission
	}

	smallGroupScope := &scope.Context{
		UserID:     1,
		Level:      scope.LevelSmallGroup,
		SmallGroup: &scope.SmallGroupRef{ID: 100, UniversityID: 10, RegionID: 1},
	}
	nationalScope := &scope.Context{UserID: 1, Level: scope.LevelNational}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := rbac.NewService(mockRepo, nil, logger)
		handler = rbac.NewHandler(service)
	})

	Describe("catalog mutations from a scoped caller", func() {
		It("should refuse role creation with 403", func() {
			req := requestAs(http.MethodPost, "/roles", `{"name":"backdoor","level":"superadmin"}`, smallGroupScope)
			w := httptest.NewRecorder()

			handler.CreateRole(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.roles).To(BeEmpty())
		})

		It("should refuse permission creation with 403", func() {
			req := requestAs(http.MethodPost, "/permissions", `{"name":"members:purge","resource":"member","action":"purge","scope":"regional"}`, smallGroupScope)
			w := httptest.NewRecorder()

			handler.CreatePermission(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.permissions).To(BeEmpty())
		})

		It("should refuse bulk reconcile with 403", func() {
			seedRole("campus_leader")
			seedPermission("members:write")

			req := requestAs(http.MethodPut, "/roles/1/permissions",
				`{"permissions":[{"permissionId":1,"isAssigned":true}]}`, smallGroupScope)
			w := httptest.NewRecorder()

			handler.ReconcilePermissions(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(mockRepo.bindings).To(BeEmpty())
		})

		It("should refuse a caller with no scope assignment with 401", func() {
			req := requestAs(http.MethodPost, "/roles", `{"name":"backdoor","level":"superadmin"}`, nil)
			w := httptest.NewRecorder()

			handler.CreateRole(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(mockRepo.roles).To(BeEmpty())
		})
	})

	Describe("catalog mutations from an unrestricted caller", func() {
		It("should create a role", func() {
			req := requestAs(http.MethodPost, "/roles", `{"name":"regional_director","level":"region"}`, nationalScope)
			w := httptest.NewRecorder()

			handler.CreateRole(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var envelope struct {
				Success bool       `json:"success"`
				Data    *rbac.Role `json:"data"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Success).To(BeTrue())
			Expect(envelope.Data.Name).To(Equal("regional_director"))
		})
	})

	Describe("catalog reads", func() {
		It("should stay open to scoped callers", func() {
			seedRole("campus_leader")

			req := requestAs(http.MethodGet, "/roles", "", smallGroupScope)
			w := httptest.NewRecorder()

			handler.ListRoles(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})
})
