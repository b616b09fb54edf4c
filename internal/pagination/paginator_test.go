package pagination_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/pagination"
)

func TestParsePagination_Defaults(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?", nil)

	p := pagination.ParsePagination(c)
	if p.Limit != 20 {
		t.Fatalf("expected default limit 20, got %d", p.Limit)
	}
	if p.Page != 1 || p.Offset != 0 {
		t.Fatalf("expected page 1 offset 0, got %+v", p)
	}
}

func TestParsePagination_ClampsToMaxLimit(t *testing.T) {
	t.Setenv("MAX_LIMIT", "50")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=80&page=3", nil)

	p := pagination.ParsePagination(c)
	if p.Limit != 50 || p.Offset != 100 {
		t.Fatalf("expected limit 50 offset 100, got %+v", p)
	}
	meta := p.Meta(7)
	if meta["total"] != int64(7) || meta["page"] != 3 {
		t.Fatalf("unexpected meta %v", meta)
	}
	if p.Total != 7 {
		t.Fatalf("expected Total 7 on the pagination, got %d", p.Total)
	}
}

func TestParsePagination_InvalidParams(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=abc&page=-1", nil)

	p := pagination.ParsePagination(c)
	if !c.IsAborted() {
		t.Fatalf("expected context to be aborted for invalid params, pagination=%+v", p)
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
