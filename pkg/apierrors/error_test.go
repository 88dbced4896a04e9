package apierrors_test

import (
	"os"
	"testing"

	"todoapi/pkg/apierrors"
	"todoapi/pkg/translator"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	translator.Translator = i18n.NewBundle(language.English)
	translator.Translator.MustAddMessages(language.English, &i18n.Message{ID: "test_key", Other: "Test message"})
	translator.Translator.MustAddMessages(language.French, &i18n.Message{ID: "test_key", Other: "Message de test"})
	os.Exit(m.Run())
}

func TestCreateError_ReturnsJsonErr(t *testing.T) {
	err := apierrors.CreateError(400, "test_key", "en")
	assert.Equal(t, 400, err.ErrDetails.Code)
	assert.Equal(t, "Test message", err.ErrDetails.Message)
}

func TestGetTransErrorMsg_UsesRequestedLanguage(t *testing.T) {
	assert.Equal(t, "Message de test", apierrors.GetTransErrorMsg("test_key", "fr-CA,fr;q=0.8"))
}

func TestGetTransErrorMsg_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Test message", apierrors.GetTransErrorMsg("test_key", "ja"))
}

func TestGetTransErrorMsg_FallbackToKey(t *testing.T) {
	assert.Equal(t, "unknown_key", apierrors.GetTransErrorMsg("unknown_key", "en"))
}

func TestJsonErr_ErrorMethod(t *testing.T) {
	err := apierrors.CreateError(500, "test_key", "en")
	assert.Equal(t, "Code: 500, Message: Test message", err.Error())
}
