package analyzer

import (
	"fmt"
	"strconv"

	"github.com/mabhi256/vardig/internal/model"
)

func (s *Session) analyseErrorChain(obj *object) *model.Node {
	if !obj.caps.Error || !callable(obj.recv) {
		return nil
	}
	err, ok := obj.recv.Interface().(error)
	if !ok {
		return nil
	}
	return s.ErrorChain(err)
}

// ErrorChain renders err and everything reachable through Unwrap, depth
// first. Both the single and the multi-error form are followed.
func (s *Session) ErrorChain(err error) *model.Node {
	if err == nil {
		return nil
	}

	group := groupNode("Error chain", "errorChain")
	group.CodegenType = model.CodegenStop
	limit := s.cfg.IterationLimit

	var walk func(e error, depth int)
	walk = func(e error, depth int) {
		if e == nil || len(group.Children) >= limit {
			return
		}

		node := model.NewNode("#"+strconv.Itoa(len(group.Children)), fmt.Sprintf("%T", e), model.KindError)
		node.HelpID = "error"
		var msg string
		if perr := Protect(func() { msg = e.Error() }); perr != nil {
			msg = perr.Error()
		}
		node.Normal = strconv.Quote(msg)
		node.AddData("Depth", strconv.Itoa(depth))
		group.AddChild(node)

		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			var list []error
			_ = Protect(func() { list = u.Unwrap() })
			for _, next := range list {
				walk(next, depth+1)
			}
		case interface{ Unwrap() error }:
			var next error
			_ = Protect(func() { next = u.Unwrap() })
			walk(next, depth+1)
		}
	}
	walk(err, 0)

	return group
}
