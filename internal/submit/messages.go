package submit

import "github.com/guissxs/treinocli/internal/api"

// User-facing outcome messages, in Portuguese to match the product UI.
const (
	MsgCreated           = "Treino criado com sucesso!"
	MsgUpdated           = "Treino atualizado com sucesso!"
	MsgDeleted           = "Treino excluído com sucesso!"
	MsgRegistered        = "Cadastro realizado com sucesso! Redirecionando para login..."
	MsgCreateFailed      = "Erro ao criar treino"
	MsgUpdateFailed      = "Erro ao atualizar treino"
	MsgNotFound          = "Treino não encontrado"
	MsgEmailTaken        = "Este email já está cadastrado."
	MsgBadCredentials    = "Credenciais inválidas"
	MsgConnection        = "Erro de conexão. Verifique sua internet e tente novamente."
	MsgServer            = "Ocorreu um erro no servidor. Tente novamente mais tarde."
	MsgUnexpected        = "Ocorreu um erro inesperado"
	MsgNoChanges         = "Nenhuma alteração para salvar"
	MsgAlreadySubmitting = "Envio em andamento, aguarde"
)

// UserMessage converts an API error into the string shown to the user.
// Server-supplied messages pass through verbatim; transport failures are
// distinguished from responses with an unrecognized shape; anything else
// gets the flow's fallback. AuthError is not mapped here; rejected tokens
// trigger eviction and a redirect instead of a message.
func UserMessage(err error, fallback string) string {
	switch e := err.(type) {
	case *api.ConflictError:
		return MsgEmailTaken
	case *api.NotFoundError:
		return MsgNotFound
	case *api.ServerMessageError:
		return e.Message
	case *api.TransportError:
		return MsgConnection
	case *api.UnexpectedError:
		return MsgServer
	default:
		return fallback
	}
}
