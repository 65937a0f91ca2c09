package pool

import "testing"

func TestStringBuilderPoolReuse(t *testing.T) {
	p := NewStringBuilderPool()

	sb := p.Get()
	sb.WriteString("{{Cite")
	sb.WriteString("\n}}")
	got := sb.String()
	p.Put(sb)

	if got != "{{Cite\n}}" {
		t.Errorf("expected accumulated string, got %q", got)
	}

	again := p.Get()
	if again.Len() != 0 {
		t.Errorf("expected reset builder, got length %d", again.Len())
	}
	again.WriteString("x")
	if got != "{{Cite\n}}" {
		t.Errorf("string returned before Put was modified: %q", got)
	}
}
