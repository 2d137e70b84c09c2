package bank

// Institution describes how a bank or payment app shows up in messages.
type Institution struct {
	Name string
	// Keywords are matched as lowercase substrings of the message text.
	Keywords []string
	// SenderCodes are the six-letter DLT sender codes the institution sends from.
	SenderCodes []string
}

// Institutions is scanned in order, so more specific names come before
// names that could be substrings of them.
var Institutions = []Institution{
	{Name: "HDFC Bank", Keywords: []string{"hdfc"}, SenderCodes: []string{"HDFCBK", "HDFCBN", "HDFCCC"}},
	{Name: "ICICI Bank", Keywords: []string{"icici"}, SenderCodes: []string{"ICICIB", "ICICIT", "ICICIO"}},
	{Name: "State Bank of India", Keywords: []string{"state bank of india", "sbi card", "sbi "}, SenderCodes: []string{"SBIINB", "SBIPSG", "ATMSBI", "SBICRD", "CBSSBI"}},
	{Name: "Axis Bank", Keywords: []string{"axis bank", "axis"}, SenderCodes: []string{"AXISBK", "AXISMR"}},
	{Name: "Kotak Mahindra Bank", Keywords: []string{"kotak"}, SenderCodes: []string{"KOTAKB", "KOTAKM"}},
	{Name: "Punjab National Bank", Keywords: []string{"punjab national", "pnb"}, SenderCodes: []string{"PNBSMS", "PNBBNK"}},
	{Name: "Bank of Baroda", Keywords: []string{"bank of baroda", "bob card"}, SenderCodes: []string{"BOBTXN", "BOBSMS"}},
	{Name: "Canara Bank", Keywords: []string{"canara"}, SenderCodes: []string{"CANBNK"}},
	{Name: "Union Bank of India", Keywords: []string{"union bank"}, SenderCodes: []string{"UNIONB"}},
	{Name: "IndusInd Bank", Keywords: []string{"indusind"}, SenderCodes: []string{"INDUSB"}},
	{Name: "IDFC First Bank", Keywords: []string{"idfc"}, SenderCodes: []string{"IDFCFB"}},
	{Name: "Yes Bank", Keywords: []string{"yes bank", "yesbank"}, SenderCodes: []string{"YESBNK"}},
	{Name: "Federal Bank", Keywords: []string{"federal bank", "fedbank"}, SenderCodes: []string{"FEDBNK"}},
	{Name: "IDBI Bank", Keywords: []string{"idbi"}, SenderCodes: []string{"IDBIBK"}},
	{Name: "Citibank", Keywords: []string{"citibank", "citi account"}, SenderCodes: []string{"CITIBK"}},
	{Name: "American Express", Keywords: []string{"american express", "amex"}, SenderCodes: []string{"AMEXIN"}},
	{Name: "AU Small Finance Bank", Keywords: []string{"au small finance", "au bank"}, SenderCodes: []string{"AUBANK"}},
	{Name: "Paytm Payments Bank", Keywords: []string{"paytm"}, SenderCodes: []string{"PAYTMB", "iPaytm"}},
	{Name: "Airtel Payments Bank", Keywords: []string{"airtel payments"}, SenderCodes: []string{"AIRBNK"}},
	{Name: "PhonePe", Keywords: []string{"phonepe"}, SenderCodes: []string{"PHONPE"}},
	{Name: "Google Pay", Keywords: []string{"google pay", "gpay"}, SenderCodes: []string{"GOOGLP"}},
	{Name: "Amazon Pay", Keywords: []string{"amazon pay"}, SenderCodes: []string{"AMAZON", "AMZPAY"}},
}
