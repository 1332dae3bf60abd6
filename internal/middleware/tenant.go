package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/models"
)

const (
	TenantIDHeader   = "X-Tenant-ID"
	TenantSlugHeader = "X-Tenant-Slug"
	TenantNotFound   = "/tenant-not-found"
)

// TenantFinder looks tenants up by subdomain label or verified domain.
type TenantFinder interface {
	FindTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FindTenantByDomain(ctx context.Context, domain string) (*models.Tenant, error)
}

// Resolution says how a tenant was derived from a request.
type Resolution int

const (
	ResolveNone Resolution = iota
	ResolveSubdomain
	ResolveDomain
	ResolvePath
)

// TenantResolver maps the host and path of page requests to a tenant.
type TenantResolver struct {
	tenants    TenantFinder
	rootDomain string
}

// NewTenantResolver creates a resolver for hosts under rootDomain
func NewTenantResolver(tenants TenantFinder, rootDomain string) *TenantResolver {
	return &TenantResolver{
		tenants:    tenants,
		rootDomain: strings.ToLower(strings.TrimSuffix(rootDomain, ".")),
	}
}

// Candidate returns the lookup key for a host and path and how it was found.
func (tr *TenantResolver) Candidate(host, path string) (string, Resolution) {
	host = stripPort(strings.ToLower(host))

	if label, ok := strings.CutSuffix(host, "."+tr.rootDomain); ok && label != "" && label != "www" && !strings.Contains(label, ".") {
		return label, ResolveSubdomain
	}

	if host != "" && host != tr.rootDomain && host != "www."+tr.rootDomain && !isLocalHost(host) {
		return host, ResolveDomain
	}

	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if segment != "" {
		return segment, ResolvePath
	}
	return "", ResolveNone
}

// Resolve injects the tenant of page requests or redirects to the not-found page
func (tr *TenantResolver) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bypassTenant(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		r.Header.Del(TenantIDHeader)
		r.Header.Del(TenantSlugHeader)

		key, how := tr.Candidate(r.Host, r.URL.Path)
		if how == ResolveNone {
			http.Redirect(w, r, TenantNotFound, http.StatusTemporaryRedirect)
			return
		}

		var tenant *models.Tenant
		var err error
		if how == ResolveDomain {
			tenant, err = tr.tenants.FindTenantByDomain(r.Context(), key)
		} else {
			tenant, err = tr.tenants.FindTenantBySlug(r.Context(), key)
		}
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) && !errors.Is(err, db.ErrInvalidID) {
				log.WithError(err).WithField("key", key).Error("Tenant lookup failed")
			}
			http.Redirect(w, r, TenantNotFound, http.StatusTemporaryRedirect)
			return
		}

		r.Header.Set(TenantIDHeader, tenant.ID.Hex())
		r.Header.Set(TenantSlugHeader, tenant.Slug)
		setLogTenant(r.Context(), tenant.ID.Hex())

		if how == ResolveSubdomain || how == ResolveDomain {
			r.URL.Path = "/" + tenant.Slug + r.URL.Path
			r.URL.RawPath = ""
		}

		ctx := context.WithValue(r.Context(), TenantContextKey, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext returns the tenant resolved for a page request
func TenantFromContext(ctx context.Context) (*models.Tenant, bool) {
	tenant, ok := ctx.Value(TenantContextKey).(*models.Tenant)
	return tenant, ok
}

func bypassTenant(path string) bool {
	for _, prefix := range []string{"/api/", "/static/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	switch path {
	case "/favicon.ico", "/health", TenantNotFound:
		return true
	}
	return false
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLocalHost(host string) bool {
	return host == "localhost" || net.ParseIP(strings.Trim(host, "[]")) != nil
}
