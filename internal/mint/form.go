package mint

import "liquiditySupply/internal/model"

// Form is the user-typed state of the two amount boxes.
type Form struct {
	Independent     model.Field
	TypedValue      string
	OtherTypedValue string
}

// TypeInput records text typed into field. Without liquidity both boxes stay
// user-controlled, so the previous text moves to the other box when the user
// switches fields. With liquidity the other box is always derived and its
// text is dropped.
func (f *Form) TypeInput(field model.Field, value string, noLiquidity bool) {
	if noLiquidity {
		if field == f.Independent {
			f.TypedValue = value
			return
		}
		f.OtherTypedValue = f.TypedValue
		f.Independent = field
		f.TypedValue = value
		return
	}

	f.Independent = field
	f.TypedValue = value
	f.OtherTypedValue = ""
}

// Text returns the raw text a field holds while the pool has no liquidity.
func (f Form) Text(field model.Field) string {
	if field == f.Independent {
		return f.TypedValue
	}
	return f.OtherTypedValue
}

func (f *Form) Reset() {
	*f = Form{}
}
