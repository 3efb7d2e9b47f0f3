package fuzztests

import (
	"testing"

	"passfmt/internal/edit"
	"passfmt/internal/source"
	"passfmt/internal/testkit"
)

// editsFrom decodes ops into edits: every 4 bytes are (pass, start, length, text).
func editsFrom(buf *source.Buffer, ops []byte) []edit.Edit {
	texts := []string{"", " ", "\n", "x", "é", "  "}
	passes := []string{"a", "b", "c"}
	n := buf.Len() + 2 // иногда выходим за границы, резолвер должен отклонить
	var edits []edit.Edit
	for i := 0; i+3 < len(ops) && len(edits) < 64; i += 4 {
		p := int(ops[i]) % len(passes)
		start := int(ops[i+1]) % n
		end := start + int(ops[i+2])%4
		text := texts[int(ops[i+3])%len(texts)]
		e := edit.Replace(start, end, text).Stamp(passes[p], p, len(edits), buf.Generation())
		edits = append(edits, e)
	}
	return edits
}

func FuzzResolvePlan(f *testing.F) {
	f.Add([]byte("fn é(){x;}"), []byte{0, 2, 1, 1, 1, 2, 1, 2})
	f.Add([]byte("abc"), []byte{0, 0, 0, 3, 1, 0, 0, 3, 2, 1, 2, 0})
	f.Add([]byte(""), []byte{0, 0, 0, 1})
	f.Fuzz(func(t *testing.T, text, ops []byte) {
		buf := source.NewBuffer(string(clampInput(text)))
		edits := editsFrom(buf, ops)

		for _, strict := range []bool{false, true} {
			res, err := edit.Resolver{Strict: strict}.Resolve(buf, edits)
			if res == nil {
				t.Fatalf("nil resolution (strict=%v)", strict)
			}
			if (err != nil) != (len(res.Conflicts) > 0) {
				t.Fatalf("error %v disagrees with %d conflicts", err, len(res.Conflicts))
			}
			if strict && err != nil {
				continue
			}
			if err := testkit.CheckPlan(buf, res.Plan); err != nil {
				t.Fatalf("invalid plan: %v", err)
			}
			accounted := len(res.Plan) + len(res.Rejected) + res.NoOps + res.Duplicates
			for _, c := range res.Conflicts {
				accounted += len(c.Edits)
			}
			if accounted != len(edits) {
				t.Fatalf("%d edits in, %d accounted for", len(edits), accounted)
			}
			next, changes, err := edit.Apply(buf, res.Plan, nil)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if len(changes) != len(res.Plan) || next.Generation() == buf.Generation() && len(changes) > 0 {
				t.Fatalf("apply produced %d changes for %d edits", len(changes), len(res.Plan))
			}
		}
	})
}
