package tabular

// Raw field names of SignalP 3.0 "-short" output with both methods enabled.
const (
	FieldNNID          = "NN_ID"
	FieldNNCmaxScore   = "NN_Cmax_score"
	FieldNNCmaxPos     = "NN_Cmax_pos"
	FieldNNCmaxPred    = "NN_Cmax_pred"
	FieldNNYmaxScore   = "NN_Ymax_score"
	FieldNNYmaxPos     = "NN_Ymax_pos"
	FieldNNYmaxPred    = "NN_Ymax_pred"
	FieldNNSmaxScore   = "NN_Smax_score"
	FieldNNSmaxPos     = "NN_Smax_pos"
	FieldNNSmaxPred    = "NN_Smax_pred"
	FieldNNSmeanScore  = "NN_Smean_score"
	FieldNNSmeanPred   = "NN_Smean_pred"
	FieldNNDScore      = "NN_D_score"
	FieldNNDPred       = "NN_D_pred"
	FieldHMMID         = "HMM_ID"
	FieldHMMType       = "HMM_type"
	FieldHMMCmaxScore  = "HMM_Cmax_score"
	FieldHMMCmaxPos    = "HMM_Cmax_pos"
	FieldHMMCmaxPred   = "HMM_Cmax_pred"
	FieldHMMSprobScore = "HMM_Sprob_score"
	FieldHMMSprobPred  = "HMM_Sprob_pred"
)

var signalP3Raw = []Field{
	{FieldNNID, MethodID},
	{FieldNNCmaxScore, MethodNN},
	{FieldNNCmaxPos, MethodNN},
	{FieldNNCmaxPred, MethodNN},
	{FieldNNYmaxScore, MethodNN},
	{FieldNNYmaxPos, MethodNN},
	{FieldNNYmaxPred, MethodNN},
	{FieldNNSmaxScore, MethodNN},
	{FieldNNSmaxPos, MethodNN},
	{FieldNNSmaxPred, MethodNN},
	{FieldNNSmeanScore, MethodNN},
	{FieldNNSmeanPred, MethodNN},
	{FieldNNDScore, MethodNN},
	{FieldNNDPred, MethodNN},
	{FieldHMMID, MethodID},
	{FieldHMMType, MethodHMM},
	{FieldHMMCmaxScore, MethodHMM},
	{FieldHMMCmaxPos, MethodHMM},
	{FieldHMMCmaxPred, MethodHMM},
	{FieldHMMSprobScore, MethodHMM},
	{FieldHMMSprobPred, MethodHMM},
}

// SignalP3 is the layout of SignalP 3.0 short output. The output keeps the
// untruncated identifier as ID and every per-method field under its own name.
var SignalP3 = MustSchema("signalp-3.0", signalP3Raw, FieldNNID, FieldHMMID, signalP3Columns())

func signalP3Columns() []Column {
	cols := []Column{{Raw: FieldHMMID, Header: "ID"}}
	for _, f := range signalP3Raw {
		if f.Method == MethodID {
			continue
		}
		cols = append(cols, Column{Raw: f.Name, Header: f.Name})
	}
	return cols
}
