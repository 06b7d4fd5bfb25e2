package model

// DialogState names the assistant that owns the conversation. The closed set
// mirrors the routing graph: the primary assistant plus the four specialized
// skills it can delegate to.
type DialogState string

const (
	DialogPrimary       DialogState = "assistant"
	DialogUpdateFlight  DialogState = "update_flight"
	DialogBookCarRental DialogState = "book_car_rental"
	DialogBookHotel     DialogState = "book_hotel"
	DialogBookExcursion DialogState = "book_excursion"
)

// SpecializedDialogStates lists the delegable skills in routing order.
var SpecializedDialogStates = []DialogState{
	DialogUpdateFlight,
	DialogBookCarRental,
	DialogBookHotel,
	DialogBookExcursion,
}

func (d DialogState) Valid() bool {
	switch d {
	case DialogPrimary, DialogUpdateFlight, DialogBookCarRental, DialogBookHotel, DialogBookExcursion:
		return true
	}
	return false
}

func (d DialogState) String() string {
	return string(d)
}

type dialogOpKind int

const (
	dialogOpNone dialogOpKind = iota
	dialogOpPush
	dialogOpPop
)

// DialogOp is the three-way reducer operation applied to the dialog stack at a
// node boundary: push a new owner, pop the current one, or leave it untouched.
type DialogOp struct {
	kind  dialogOpKind
	state DialogState
}

func PushDialog(s DialogState) DialogOp {
	return DialogOp{kind: dialogOpPush, state: s}
}

func PopDialog() DialogOp {
	return DialogOp{kind: dialogOpPop}
}

func KeepDialog() DialogOp {
	return DialogOp{kind: dialogOpNone}
}

// ApplyDialogOp returns the stack after the operation. Pop on an empty stack is
// a no-op; the result is always a fresh slice so callers never alias history.
func ApplyDialogOp(stack []DialogState, op DialogOp) []DialogState {
	switch op.kind {
	case dialogOpPush:
		next := make([]DialogState, 0, len(stack)+1)
		next = append(next, stack...)
		return append(next, op.state)
	case dialogOpPop:
		if len(stack) == 0 {
			return nil
		}
		next := make([]DialogState, len(stack)-1)
		copy(next, stack[:len(stack)-1])
		return next
	default:
		next := make([]DialogState, len(stack))
		copy(next, stack)
		return next
	}
}

// TopDialog returns the current owner of the conversation; an empty stack means
// the primary assistant owns it.
func TopDialog(stack []DialogState) DialogState {
	if len(stack) == 0 {
		return DialogPrimary
	}
	return stack[len(stack)-1]
}
