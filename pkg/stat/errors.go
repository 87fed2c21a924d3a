package stat

// InvalidInput is returned when a sample or a column of delimited input cannot be turned into a group summary, such as
// an empty sample, a missing column or a column with no numeric values.  Msg is suitable for showing to the user.
type InvalidInput struct {
	Msg string
}

func (e InvalidInput) Error() string {
	return e.Msg
}
