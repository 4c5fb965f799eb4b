package model

// PredictIntegrity loads the model stored at path and predicts a single
// feature vector laid out in the model's feature order. It fails with
// ErrModelNotFound when nothing has been saved at path.
func PredictIntegrity(path string, features []float64) (float64, error) {
	m, err := Load(path)
	if err != nil {
		return 0, err
	}
	out, err := m.Predict([][]float64{features})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
