package taxonomy

import (
	"context"
	"testing"

	"github.com/yungbote/skilltree-backend/internal/data/db"
	"github.com/yungbote/skilltree-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
)

func TestDomainRepoCRUDAndLinks(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	log := testutil.Logger(t)
	domains := NewDomainRepo(gdb, log)
	links := NewDomainSourceRepo(gdb, log)

	d, err := domains.Create(dbc, &types.Domain{Name: "Quantum Computing", Description: "desc"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := domains.Create(dbc, &types.Domain{Name: "Quantum Computing"}); !db.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	src := &types.Source{Title: "S", URL: "https://s.test", SourceType: types.SourceTypeBlog, Summary: "sum"}
	if err := gdb.WithContext(dbc.Ctx).Create(src).Error; err != nil {
		t.Fatalf("create source: %v", err)
	}
	if _, err := links.Create(dbc, &types.DomainSource{
		DomainID:          d.ID,
		SourceID:          src.ID,
		RelevanceScore:    0.8,
		RelevantExcerpt:   "sum",
		UsedForGeneration: true,
	}); err != nil {
		t.Fatalf("link: %v", err)
	}

	got, err := links.ListByDomain(dbc, d.ID)
	if err != nil {
		t.Fatalf("ListByDomain: %v", err)
	}
	if len(got) != 1 || got[0].Source == nil || got[0].Source.URL != "https://s.test" {
		t.Fatalf("unexpected links: %+v", got)
	}

	if err := domains.UpdateFields(dbc, d.ID, map[string]interface{}{"description": "updated"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	reloaded, err := domains.GetByName(dbc, "Quantum Computing")
	if err != nil || reloaded == nil || reloaded.Description != "updated" {
		t.Fatalf("GetByName: got=%v err=%v", reloaded, err)
	}

	ok, err := domains.Delete(dbc, d.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	n, err := links.CountByDomain(dbc, d.ID)
	if err != nil || n != 0 {
		t.Fatalf("expected links removed, n=%d err=%v", n, err)
	}
	var srcCount int64
	gdb.Model(&types.Source{}).Count(&srcCount)
	if srcCount != 1 {
		t.Fatalf("sources must survive domain delete, got %d", srcCount)
	}
}
