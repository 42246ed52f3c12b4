package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstoreYAML = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: pet list
          content:
            application/json:
              example:
                - id: 1
                  name: rex
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      responses:
        "200":
          description: a pet
        "404":
          description: no such pet
        default:
          description: unexpected error
`

func TestImportOpenAPI(t *testing.T) {
	def, err := ImportOpenAPI([]byte(petstoreYAML))
	require.NoError(t, err)

	assert.Equal(t, "Petstore", def.Name)
	assert.Equal(t, "1.0", def.Version)
	require.Len(t, def.Endpoints, 2)

	list := def.Endpoints[0]
	assert.Equal(t, "GET", list.Method)
	assert.Equal(t, "/pets", list.Path)
	require.Len(t, list.Parameters, 1)
	assert.Equal(t, InQuery, list.Parameters[0].In)
	assert.Equal(t, "integer", list.Parameters[0].Type)
	assert.JSONEq(t, `[{"id":1,"name":"rex"}]`, list.Responses[200].Body)

	byID := def.Endpoints[1]
	assert.Equal(t, "/pets/{petId}", byID.Path)
	require.Len(t, byID.Parameters, 1)
	assert.Equal(t, InPath, byID.Parameters[0].In)
	assert.True(t, byID.Parameters[0].Required)

	// default response is dropped; numeric ones kept.
	assert.Contains(t, byID.Responses, 200)
	assert.Contains(t, byID.Responses, 404)
	assert.Len(t, byID.Responses, 2)
}

func TestImportOpenAPIOperationParameterOverride(t *testing.T) {
	// petId is declared at the path level and redeclared by the
	// operation; the import must keep one parameter, the operation's.
	const doc = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: a pet
`
	def, err := ImportOpenAPI([]byte(doc))
	require.NoError(t, err)
	require.Len(t, def.Endpoints, 1)

	params := def.Endpoints[0].Parameters
	require.Len(t, params, 1)
	assert.Equal(t, "petId", params[0].Name)
	assert.Equal(t, InPath, params[0].In)
	assert.Equal(t, "integer", params[0].Type)
}

func TestImportOpenAPIRejectsGarbage(t *testing.T) {
	_, err := ImportOpenAPI([]byte("{not an openapi doc"))
	assert.Error(t, err)
}
