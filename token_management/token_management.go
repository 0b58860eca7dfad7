package token_management

import (
	"fmt"
	"sync"

	"github.com/josehu07/codetective/constants/lipgloss"
	"github.com/josehu07/codetective/token_management/contracts"
)

// tokenManager accumulates token usage across the detection session. All
// provider adapters report usage here after each classification call.
type tokenManager struct {
	mu              sync.Mutex
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

// NewTokenManager creates a new token manager.
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// UsedTokens accumulates the token count for the session.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) DisplayTokens(providerName string, modelName string) {
	total, input, output := tm.GetCurrentTokenUsage()

	tokenInfo := fmt.Sprintf("Tokens Used: %d (Input: %d, Output: %d) - Provider: %s - Model: %s",
		total, input, output, providerName, modelName)
	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}
