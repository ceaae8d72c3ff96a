package consts

const (
	GiftFlagYes = "Y"
	GiftFlagNo  = "N"
)

const (
	GiftTypeProduct = "PRODUCT"
	GiftTypeVoucher = "VOUCHER"
)

// DefaultReceiverName 收件人兜底展示名 ("선물받는 친구")
const DefaultReceiverName = "선물받는 친구"
