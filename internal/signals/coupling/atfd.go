package coupling

import (
	"context"
	"regexp"

	"smellsense/internal/signals"
	"smellsense/internal/signals/utils"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// ATFDSignal measures Access To Foreign Data
// Counts distinct attributes of other objects read through accessors or
// direct member access.
type ATFDSignal struct {
	accessorPattern *regexp.Regexp
}

// NewATFDSignal creates a new ATFD signal
func NewATFDSignal() *ATFDSignal {
	return &ATFDSignal{
		accessorPattern: regexp.MustCompile(`^(get|Get|is|Is|has|Has)([A-Z]|_[a-z])`),
	}
}

func (s *ATFDSignal) Name() string {
	return "ATFD"
}

func (s *ATFDSignal) Category() signals.SignalCategory {
	return signals.CategoryCoupling
}

func (s *ATFDSignal) Description() string {
	return "Access To Foreign Data - number of external class attributes accessed"
}

func (s *ATFDSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}

	externalAccesses := make(map[string]bool)
	for _, method := range u.Structure.Methods {
		for _, access := range s.findExternalAccesses(u.Structure, method) {
			externalAccesses[access] = true
		}
	}
	return float64(len(externalAccesses)), nil
}

// findExternalAccesses lists receiver.member pairs where the receiver is
// not the current instance and the member is an accessor call or a plain
// attribute read.
func (s *ATFDSignal) findExternalAccesses(structure *unit.Structure, method *unit.Method) []string {
	var accesses []string
	method.Body.Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatCall:
			receiver := syntax.Unwrap(syntax.Receiver(n))
			name := syntax.MemberName(n)
			if receiver != nil && !utils.IsSelf(receiver, structure.Selves) && s.accessorPattern.MatchString(name) {
				accesses = append(accesses, receiver.Text+"."+name)
			}
		case syntax.CatMember:
			receiver := syntax.Unwrap(syntax.Receiver(n))
			if receiver != nil && receiver.Is(syntax.CatIdentifier) && !utils.IsSelf(receiver, structure.Selves) {
				accesses = append(accesses, receiver.Text+"."+syntax.MemberName(n))
			}
		}
		return true
	})
	return accesses
}
