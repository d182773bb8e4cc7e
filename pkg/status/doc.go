/*
Package status applies engine output to files on disk and records what changed.

	+-------------+      +-------------+
	|   Engine    | ---> |  temp file  |  .name.sd-rg-XXXX (same directory)
	| (substitute)|      +------+------+
	+-------------+             |
	                      rename(2) over original
	                            |
	                     +------+------+
	                     |   Records   |
	                     |  (summary)  |
	                     +-------------+

🎯 Purpose:
- Replace a file's content without readers ever seeing a partial write
- Keep the original file mode
- Remember which files were modified, in order, for the final summary

⚠️ Guarantees:
Each replacement is atomic on filesystems where rename within a directory is
atomic. A batch is not: when file N+1 fails, files 1..N stay modified.
No locking is done against concurrent writers.
*/
package status
