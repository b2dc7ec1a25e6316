package dataset

import "errors"

var (
	// ErrEmptyData indicates input without a header or without data rows.
	ErrEmptyData = errors.New("dataset is empty")
	// ErrNoNumericColumns indicates input where no column parses as numeric.
	ErrNoNumericColumns = errors.New("dataset has no numeric columns")
	// ErrUnknownColumn indicates a column name that is not in the frame or is not numeric.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownFillMethod indicates an unsupported missing-value strategy.
	ErrUnknownFillMethod = errors.New("unknown fill method")
	// ErrUnknownScaler indicates an unsupported scaler kind.
	ErrUnknownScaler = errors.New("unknown scaler")
	// ErrTransform indicates scaling attempted on data that still holds missing values.
	ErrTransform = errors.New("transform failed")
)
