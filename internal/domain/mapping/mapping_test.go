package mapping

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

func TestBuilder_Simple(t *testing.T) {
	m := NewBuilder("doc").
		Text("Name").
		Keyword("ID", Named("id")).
		Int("Scalar").
		Time("Created", NotIndexed()).
		MustBuild()

	if m.Name() != "doc" {
		t.Errorf("name = %q, want doc", m.Name())
	}
	if m.Len() != 4 {
		t.Fatalf("fields count = %d, want 4", m.Len())
	}

	name, err := m.FieldFor("Name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name.Indexing != field.Analyzed || name.Storage != field.Stored {
		t.Errorf("Name = %+v, want stored analyzed", name)
	}

	id, _ := m.FieldFor("ID")
	if id.Name != "id" || id.Indexing != field.ExactMatch {
		t.Errorf("ID = %+v, want exact field id", id)
	}
	if got, ok := m.FieldNamed("id"); !ok || got.Property != "ID" {
		t.Errorf("FieldNamed(id) = %+v, %v", got, ok)
	}

	scalar, _ := m.FieldFor("Scalar")
	if !scalar.Numeric() {
		t.Error("Scalar should be numeric")
	}

	created, _ := m.FieldFor("Created")
	if created.Searchable() {
		t.Error("Created should not be searchable")
	}
}

func TestBuilder_FieldOrder(t *testing.T) {
	m := NewBuilder("doc").Keyword("B").Keyword("A").Keyword("C", NotStored()).MustBuild()
	var names []string
	for _, f := range m.Fields() {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "B,A,C" {
		t.Errorf("order = %v, want B,A,C", names)
	}
	if got := strings.Join(m.StoredFields(), ","); got != "B,A" {
		t.Errorf("stored = %q, want B,A", got)
	}
}

func TestBuilder_FieldsReturnsCopy(t *testing.T) {
	m := NewBuilder("doc").Keyword("A").MustBuild()
	fs := m.Fields()
	fs[0].Name = "mutated"
	if f, _ := m.FieldFor("A"); f.Name != "A" {
		t.Errorf("mapping mutated through Fields(): %q", f.Name)
	}
}

func TestBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*Mapping, error)
		wantErr string
	}{
		{
			name: "duplicate field name",
			builder: func() (*Mapping, error) {
				return NewBuilder("doc").Keyword("A", Named("x")).Keyword("B", Named("x")).Build()
			},
			wantErr: "duplicate field name",
		},
		{
			name: "duplicate property",
			builder: func() (*Mapping, error) {
				return NewBuilder("doc").Keyword("A").Int("A", Named("a2")).Build()
			},
			wantErr: "duplicate property",
		},
		{
			name: "unregistered kind",
			builder: func() (*Mapping, error) {
				return NewBuilder("doc").Field("Geo", codec.Kind("geo")).Build()
			},
			wantErr: "no codec registered",
		},
		{
			name: "analyzed numeric",
			builder: func() (*Mapping, error) {
				return NewBuilder("doc").Int("N", Analyzed()).Build()
			},
			wantErr: "only string fields",
		},
		{
			name: "reserved name",
			builder: func() (*Mapping, error) {
				return NewBuilder("doc").Keyword("A", Named("__fields")).Build()
			},
			wantErr: "reserved",
		},
		{
			name: "no entity name",
			builder: func() (*Mapping, error) {
				return NewBuilder("").Keyword("A").Build()
			},
			wantErr: "entity name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrMapping) {
				t.Errorf("err = %v, want ErrMapping", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMapping_UnknownField(t *testing.T) {
	m := NewBuilder("doc").Keyword("A").MustBuild()
	_, err := m.FieldFor("B")
	var ufe *domain.UnknownFieldError
	if !errors.As(err, &ufe) {
		t.Fatalf("err = %v, want *UnknownFieldError", err)
	}
	if ufe.Property != "B" || ufe.Entity != "doc" {
		t.Errorf("ufe = %+v", ufe)
	}
}

type taggedDoc struct {
	Name    string    `searchmap:"name,text"`
	ID      string    `searchmap:"id"`
	Scalar  *int      `searchmap:"scalar"`
	Secret  string    `searchmap:"secret,nostore"`
	Created time.Time `searchmap:"created,noindex"`
	Skipped string    `searchmap:"-"`
	Plain   string
}

func TestFromStruct_Tags(t *testing.T) {
	m, err := FromStruct(reflect.TypeOf(taggedDoc{}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "taggedDoc" {
		t.Errorf("name = %q", m.Name())
	}
	if m.Len() != 5 {
		t.Fatalf("fields = %d, want 5", m.Len())
	}

	name, _ := m.FieldFor("Name")
	if name.Name != "name" || name.Indexing != field.Analyzed {
		t.Errorf("Name = %+v", name)
	}
	id, _ := m.FieldFor("ID")
	if id.Indexing != field.ExactMatch {
		t.Errorf("ID indexing = %v, want exact", id.Indexing)
	}
	scalar, _ := m.FieldFor("Scalar")
	if scalar.Codec.Kind() != codec.KindInt {
		t.Errorf("Scalar kind = %q, want int", scalar.Codec.Kind())
	}
	secret, _ := m.FieldFor("Secret")
	if secret.IsStored() {
		t.Error("Secret should not be stored")
	}
	if _, err := m.FieldFor("Plain"); err == nil {
		t.Error("untagged field should not be mapped")
	}
	if idx, ok := m.Binding("Scalar"); !ok || len(idx) != 1 || idx[0] != 2 {
		t.Errorf("Binding(Scalar) = %v, %v", idx, ok)
	}
	if m.Type() != reflect.TypeOf(taggedDoc{}) {
		t.Errorf("Type = %v", m.Type())
	}
}

func TestFromStruct_Errors(t *testing.T) {
	type badKind struct {
		Tags []string `searchmap:"tags"`
	}
	type badModifier struct {
		A string `searchmap:"a,fuzzy"`
	}
	type dupName struct {
		A string `searchmap:"x"`
		B string `searchmap:"x"`
	}
	type noTags struct {
		A string
	}

	tests := []struct {
		name    string
		typ     reflect.Type
		wantErr string
	}{
		{"non-struct", reflect.TypeOf(0), "not a struct"},
		{"unsupported type", reflect.TypeOf(badKind{}), "no codec registered"},
		{"unknown modifier", reflect.TypeOf(badModifier{}), "unknown modifier"},
		{"duplicate name", reflect.TypeOf(dupName{}), "duplicate field name"},
		{"no tags", reflect.TypeOf(noTags{}), "no field with a searchmap tag"},
		{"anonymous", reflect.TypeOf(struct {
			A string `searchmap:"a"`
		}{}), "anonymous struct types"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromStruct(tt.typ, nil)
			if !errors.Is(err, domain.ErrMapping) {
				t.Fatalf("err = %v, want ErrMapping", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

var describeCalls atomic.Int32

type describedDoc struct {
	Name   string
	Scalar *int64
}

func (describedDoc) Describe(b *Builder) {
	describeCalls.Add(1)
	b.Text("Name").Int("Scalar").Keyword("Extra")
}

func TestFromStruct_Describer(t *testing.T) {
	m, err := FromStruct(reflect.TypeOf(describedDoc{}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Binding("Name"); !ok {
		t.Error("Name should bind to the struct field")
	}
	if _, ok := m.Binding("Extra"); ok {
		t.Error("Extra has no struct field and should stay unbound")
	}
}

type mismatchedDoc struct {
	Scalar string
}

func (mismatchedDoc) Describe(b *Builder) { b.Int("Scalar") }

func TestFromStruct_DescriberKindMismatch(t *testing.T) {
	_, err := FromStruct(reflect.TypeOf(mismatchedDoc{}), nil)
	if !errors.Is(err, domain.ErrMapping) {
		t.Fatalf("err = %v, want ErrMapping", err)
	}
}

func TestRegistry_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	reg := NewRegistry(nil)
	var builds atomic.Int32

	const callers = 64
	results := make([]*Mapping, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m, err := reg.Named("doc", func(b *Builder) {
				builds.Add(1)
				time.Sleep(5 * time.Millisecond)
				b.Text("Name").Int("Scalar")
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = m
		}()
	}
	close(start)
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
	for i, m := range results {
		if m != results[0] {
			t.Fatalf("caller %d got a different mapping", i)
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistry_ForType(t *testing.T) {
	reg := NewRegistry(nil)
	before := describeCalls.Load()

	a, err := Of[describedDoc](reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := reg.For(reflect.TypeOf(&describedDoc{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Error("pointer and value type should share one mapping")
	}
	if got := describeCalls.Load() - before; got != 1 {
		t.Errorf("Describe called %d times, want 1", got)
	}
}

func TestRegistry_IsolatedInstances(t *testing.T) {
	a, _ := NewRegistry(nil).Named("doc", func(b *Builder) { b.Keyword("A") })
	b, _ := NewRegistry(nil).Named("doc", func(b *Builder) { b.Keyword("B") })
	if _, err := a.FieldFor("A"); err != nil {
		t.Error("first registry should keep its own mapping")
	}
	if _, err := b.FieldFor("B"); err != nil {
		t.Error("second registry should keep its own mapping")
	}
}

func TestRegistry_FailedBuildNotCached(t *testing.T) {
	reg := NewRegistry(nil)
	bad := func(b *Builder) { b.Keyword("A", Named("x")).Keyword("B", Named("x")) }
	for range 2 {
		if _, err := reg.Named("bad", bad); !errors.Is(err, domain.ErrMapping) {
			t.Fatalf("err = %v, want ErrMapping", err)
		}
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

func TestMapping_Compatible(t *testing.T) {
	type doc struct {
		Code string `searchmap:"code"`
	}
	typed, err := FromStruct(reflect.TypeFor[doc](), nil)
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	base := NewBuilder("doc").Keyword("Code", Named("code")).MustBuild()

	tests := []struct {
		name  string
		other *Mapping
		want  bool
	}{
		{"same pointer", base, true},
		{"rebuilt", NewBuilder("doc").Keyword("Code", Named("code")).MustBuild(), true},
		{"other name", NewBuilder("doc2").Keyword("Code", Named("code")).MustBuild(), false},
		{"other field", NewBuilder("doc").Keyword("Title").MustBuild(), false},
		{"other policy", NewBuilder("doc").Keyword("Code", Named("code"), NotStored()).MustBuild(), false},
		{"other codec", NewBuilder("doc").Int("Code", Named("code")).MustBuild(), false},
		{"struct bound", typed, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Compatible(tt.other); got != tt.want {
				t.Errorf("Compatible = %v, want %v", got, tt.want)
			}
		})
	}
}
