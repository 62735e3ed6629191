/*
Package compiler glues the stages together.

Process of compilation

	Program Text ->
		lex, parse ->
	Abstract Syntax Tree (ast) ->
		translate (front) ->
	Intermediate Typed Tree (itt) ->
		generate (back) ->
	LLVM IR Module (llir) ->
		llc, link ->
	Binary Executable

The last step is done by external tools.
*/
package compiler
