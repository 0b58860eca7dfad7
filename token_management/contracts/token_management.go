package contracts

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	GetCurrentTokenUsage() (total int, input int, output int)
	DisplayTokens(providerName string, modelName string)
	ClearToken()
}
