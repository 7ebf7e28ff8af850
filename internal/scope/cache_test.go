package scope_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/scope"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Redis Cache", func() {
	var (
		server *miniredis.Miniredis
		cache  *scope.RedisCache
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		server, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		cache, err = scope.NewRedisCache(internal.RedisConfig{
			URL:      "redis://" + server.Addr(),
			ScopeTTL: time.Minute,
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		cache.Close()
		server.Close()
	})

	regionScope := func(userID int64) *scope.Context {
		return &scope.Context{
			UserID: userID,
			Level:  scope.LevelRegion,
			Region: &scope.RegionRef{ID: 1, Name: "Jabodetabek"},
		}
	}

	It("should round-trip a scope context", func() {
		Expect(cache.Set(ctx, regionScope(7))).To(Succeed())

		cached, err := cache.Get(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).NotTo(BeNil())
		Expect(cached.Level).To(Equal(scope.LevelRegion))
		Expect(cached.Region.ID).To(Equal(int64(1)))
	})

	It("should miss with (nil, nil) for an unknown user", func() {
		cached, err := cache.Get(ctx, 404)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeNil())
	})

	It("should miss after invalidation", func() {
		Expect(cache.Set(ctx, regionScope(7))).To(Succeed())
		Expect(cache.Invalidate(ctx, 7)).To(Succeed())

		cached, err := cache.Get(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeNil())
	})

	It("should expire entries after the TTL", func() {
		Expect(cache.Set(ctx, regionScope(7))).To(Succeed())

		server.FastForward(2 * time.Minute)

		cached, err := cache.Get(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached).To(BeNil())
	})

	It("should drop a corrupt entry instead of serving it", func() {
		Expect(server.Set("scope:ctx:7", "{not-json")).To(Succeed())

		_, err := cache.Get(ctx, 7)
		Expect(err).To(HaveOccurred())

		Expect(server.Exists("scope:ctx:7")).To(BeFalse())
	})
})
